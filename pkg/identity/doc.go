// Package identity defines the per-request caller identity and its context
// plumbing. An Identity is produced by the guard pipeline from an access or
// refresh token, or provisionally from a Basic credential, and lives for
// exactly one request.
package identity
