package endpoints

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/google/uuid"

	"github.com/ssshoffice/office-in-go/pkg/audit"
	"github.com/ssshoffice/office-in-go/pkg/auth"
	"github.com/ssshoffice/office-in-go/pkg/auth/permission"
	"github.com/ssshoffice/office-in-go/pkg/auth/token"
	"github.com/ssshoffice/office-in-go/pkg/identity"
	"github.com/ssshoffice/office-in-go/pkg/server"
	"github.com/ssshoffice/office-in-go/pkg/server/store"
)

// TokenPairResponse carries a freshly issued token pair.
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	LoginID     string `json:"loginId"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// RegisterResponse echoes the created account.
type RegisterResponse struct {
	ID          string `json:"id"`
	LoginID     string `json:"loginId"`
	DisplayName string `json:"displayName"`
}

// RegisterSessionEndpoints registers login, refresh and register routes.
func RegisterSessionEndpoints(s *server.Server) {
	router := s.Router

	router.HandleFunc("/login", handleLogin(s.Codec, s.Tokens, s.UsersStore)).
		Methods("POST").Name("session.login")
	router.HandleFunc("/refresh", handleRefresh(s.Tokens, s.UsersStore)).
		Methods("POST").Name("session.refresh")
	router.HandleFunc("/register", handleRegister(s.Codec, s.UsersStore)).
		Methods("POST").Name("session.register")
}

// handleLogin exchanges a Basic credential for a token pair. The guard's
// identity stage has already decoded the credential; this handler verifies
// it against storage.
func handleLogin(codec *auth.Codec, tokens *token.Service, users store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok || id.Kind != identity.KindBasic {
			w.Header().Set("WWW-Authenticate", `Basic realm="office"`)
			respondWithError(w, http.StatusUnauthorized, "Basic credential required")
			return
		}

		clientIP := remoteIP(r)

		subject, err := users.FindByLoginID(id.LoginID)
		if err != nil {
			audit.Log(audit.LoginEvent{LoginID: id.LoginID, ClientIP: clientIP, ErrorMessage: "unknown login id"})
			respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		if !codec.Compare(id.Password, subject.HashedPassword) {
			audit.Log(audit.LoginEvent{LoginID: id.LoginID, ClientIP: clientIP, ErrorMessage: "bad password"})
			respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		seedIdentity := &identity.Identity{
			SubjectID:       subject.ID,
			PermissionCodes: subject.PermissionCodes,
			Kind:            identity.KindAccess,
		}
		if !permission.Satisfies(seedIdentity, permission.CanUseOffice) {
			audit.Log(audit.LoginEvent{LoginID: id.LoginID, SubjectID: subject.ID, ClientIP: clientIP, ErrorMessage: "missing baseline permission"})
			respondWithError(w, http.StatusForbidden, "No permission")
			return
		}

		pair, err := issuePair(tokens, subject)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to issue tokens")
			return
		}

		audit.Log(audit.LoginEvent{LoginID: id.LoginID, SubjectID: subject.ID, ClientIP: clientIP, Success: true})
		setAccessCookie(w, pair.AccessToken)
		respondWithJSON(w, http.StatusOK, pair)
	}
}

// handleRefresh exchanges a refresh token for a new pair. The guard has
// already enforced the REFRESH kind; permission codes come fresh from
// storage, not from the old token.
func handleRefresh(tokens *token.Service, users store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authorization missing")
			return
		}

		subject, err := users.FindByID(id.SubjectID)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		pair, err := issuePair(tokens, subject)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to issue tokens")
			return
		}

		setAccessCookie(w, pair.AccessToken)
		respondWithJSON(w, http.StatusOK, pair)
	}
}

// handleRegister creates an account with a hashed password. New accounts
// start without permission codes; granting them is an administration task.
func handleRegister(codec *auth.Codec, users store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.LoginID == "" || req.Password == "" || req.DisplayName == "" {
			respondWithError(w, http.StatusBadRequest, "loginId, password and displayName are required")
			return
		}

		hashed, err := codec.Hash(req.Password)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}

		subject := &store.Subject{
			ID:             uuid.NewString(),
			LoginID:        req.LoginID,
			DisplayName:    req.DisplayName,
			HashedPassword: hashed,
		}
		if err := users.Create(subject); err != nil {
			if errors.Is(err, store.ErrDuplicateSubject) {
				respondWithError(w, http.StatusConflict, "Login id or display name already taken")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		respondWithJSON(w, http.StatusCreated, RegisterResponse{
			ID:          subject.ID,
			LoginID:     subject.LoginID,
			DisplayName: subject.DisplayName,
		})
	}
}

func issuePair(tokens *token.Service, subject *store.Subject) (*TokenPairResponse, error) {
	seed := token.Seed{SubjectID: subject.ID, PermissionCodes: subject.PermissionCodes}

	access, err := tokens.Issue(seed, identity.KindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := tokens.Issue(seed, identity.KindRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPairResponse{AccessToken: access, RefreshToken: refresh}, nil
}

func setAccessCookie(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
