package identity

import (
	"context"
	"time"
)

// Kind distinguishes how the caller presented itself.
type Kind string

const (
	// KindAccess is a short-lived token for regular API calls.
	KindAccess Kind = "ACCESS"
	// KindRefresh is a long-lived token accepted only by the refresh endpoint.
	KindRefresh Kind = "REFRESH"
	// KindBasic is a provisional identity decoded from a Basic credential.
	// It has not been verified against storage.
	KindBasic Kind = "BASIC"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity represents the decoded caller for a single request. It is created
// by the guard pipeline from a token or Basic credential and never persisted.
type Identity struct {
	// SubjectID is the stable user identifier. Empty for Basic identities.
	SubjectID string

	// PermissionCodes carried by an access token. Order is irrelevant and
	// codes are unique. Always empty for refresh tokens.
	PermissionCodes []string

	Kind     Kind
	IssuedAt time.Time

	// Basic-credential fields, set only when Kind == KindBasic. The password
	// is plaintext here; verification against the stored hash is the login
	// endpoint's job.
	LoginID  string
	Password string
}

// HasCode reports whether the identity carries the given permission code.
func (i *Identity) HasCode(code string) bool {
	for _, c := range i.PermissionCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
