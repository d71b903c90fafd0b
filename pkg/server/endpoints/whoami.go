package endpoints

import (
	"net/http"

	"github.com/ssshoffice/office-in-go/pkg/identity"
	"github.com/ssshoffice/office-in-go/pkg/server"
)

// WhoamiResponse echoes the verified token claims of the caller.
type WhoamiResponse struct {
	SubjectID       string        `json:"id"`
	PermissionCodes []string      `json:"auths"`
	Kind            identity.Kind `json:"type"`
	IssuedAtMillis  int64         `json:"iat"`
}

// RegisterWhoamiEndpoint registers the identity-echo route.
func RegisterWhoamiEndpoint(s *server.Server) {
	s.Router.HandleFunc("/whoami", handleWhoami()).
		Methods("GET").Name("whoami")
}

func handleWhoami() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authorization missing")
			return
		}

		codes := id.PermissionCodes
		if codes == nil {
			codes = []string{}
		}
		respondWithJSON(w, http.StatusOK, WhoamiResponse{
			SubjectID:       id.SubjectID,
			PermissionCodes: codes,
			Kind:            id.Kind,
			IssuedAtMillis:  id.IssuedAt.UnixMilli(),
		})
	}
}
