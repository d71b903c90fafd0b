// Package config manages server configuration: token lifetimes and the
// password hashing cost. Values come from office.yml with environment
// overrides; Watch keeps the global singleton in sync with file edits.
package config
