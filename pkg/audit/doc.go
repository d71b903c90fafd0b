// Package audit emits security-relevant events (logins, clock operations,
// attendance deletions) as RFC5424 syslog lines on stdout.
package audit
