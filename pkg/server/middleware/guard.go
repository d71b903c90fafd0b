package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ssshoffice/office-in-go/pkg/auth"
	"github.com/ssshoffice/office-in-go/pkg/auth/permission"
	"github.com/ssshoffice/office-in-go/pkg/auth/token"
	"github.com/ssshoffice/office-in-go/pkg/identity"
)

const (
	prefixBasic  = "Basic"
	prefixBearer = "Bearer"

	accessTokenCookie = "accessToken"
)

// Requirement declares what a named route demands from the caller.
type Requirement struct {
	// Public routes skip the permission stage entirely.
	Public bool

	// Kind is the expected credential kind; the zero value means ACCESS.
	Kind identity.Kind

	// Codes is the any-of set of required permission codes.
	Codes []string

	// KindOnly accepts any authenticated identity of the expected kind
	// without a code check. Used by the refresh route, whose tokens carry
	// no permission codes.
	KindOnly bool
}

// Requirements maps mux route names to their declared requirement. A route
// with no entry requires the baseline sentinel: protected by default, never
// silently open.
type Requirements map[string]Requirement

// Guard is the two-stage access pipeline: Identity populates the request
// identity from a credential, Permission enforces the route's requirement.
// Register them in that order; Permission assumes Identity already ran.
type Guard struct {
	tokens *token.Service
	codec  *auth.Codec
	routes Requirements
}

// NewGuard creates a Guard over the route requirement table.
func NewGuard(tokens *token.Service, codec *auth.Codec, routes Requirements) *Guard {
	return &Guard{tokens: tokens, codec: codec, routes: routes}
}

// Identity is stage one. A missing credential is not an error: the request
// continues anonymously and the permission stage decides. A present but
// broken credential fails here with 401.
func (g *Guard) Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := rawCredential(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		prefix, value, ok := splitCredential(raw)
		if !ok {
			unauthorized(w, "Malformed authorization header")
			return
		}

		var id *identity.Identity
		switch prefix {
		case prefixBasic:
			cred, err := g.codec.DecodeBasic(value)
			if err != nil {
				unauthorized(w, "Malformed authorization token")
				return
			}
			id = &identity.Identity{
				Kind:     identity.KindBasic,
				LoginID:  cred.LoginID,
				Password: cred.Password,
			}
		case prefixBearer:
			verified, err := g.tokens.Verify(value)
			if err != nil {
				if errors.Is(err, token.ErrExpiredToken) {
					unauthorized(w, "Token expired")
					return
				}
				unauthorized(w, "Invalid token")
				return
			}
			id = verified
		default:
			unauthorized(w, "Malformed authorization header")
			return
		}

		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

// Permission is stage two. It resolves the matched route's requirement and
// enforces it against the identity stage one attached.
func (g *Guard) Permission(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := g.requirementFor(r)
		if req.Public {
			next.ServeHTTP(w, r)
			return
		}

		id, ok := identity.Get(r.Context())
		if !ok {
			unauthorized(w, "Authorization missing")
			return
		}

		expected := req.Kind
		if expected == "" {
			expected = identity.KindAccess
		}
		if id.Kind != expected {
			unauthorized(w, "Invalid token")
			return
		}

		if !req.KindOnly && !permission.Satisfies(id, req.Codes...) {
			forbidden(w, "No permission")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Guard) requirementFor(r *http.Request) Requirement {
	if route := mux.CurrentRoute(r); route != nil {
		if req, ok := g.routes[route.GetName()]; ok {
			return req
		}
	}
	// Undeclared routes demand the baseline sentinel.
	return Requirement{Codes: []string{permission.CanUseOffice}}
}

// rawCredential reads the Authorization header, falling back to the access
// token cookie for browser sessions.
func rawCredential(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return h
	}
	if c, err := r.Cookie(accessTokenCookie); err == nil && c.Value != "" {
		return prefixBearer + " " + c.Value
	}
	return ""
}

func splitCredential(raw string) (prefix, value string, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), " ")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(msg))
}

func forbidden(w http.ResponseWriter, msg string) {
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(msg))
}
