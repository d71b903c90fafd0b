package endpoints

import (
	"net/http"

	"github.com/ssshoffice/office-in-go/pkg/server"
)

// RegisterStatusEndpoints registers the service status and health routes.
func RegisterStatusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/", handleStatus()).
		Methods("GET").Name("status")
	s.Router.HandleFunc("/health", handleHealth(s)).
		Methods("GET").Name("health")
}

func handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleHealth(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.HealthStore.CheckConnectivity(); err != nil {
			respondWithError(w, http.StatusServiceUnavailable, "Database unreachable")
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}
