// Package auth provides the credential codec: bcrypt password hashing and
// verification, and Basic-token decoding. Token issuance and verification
// live in the token subpackage; permission evaluation in permission.
package auth
