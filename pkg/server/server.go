package server

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/ssshoffice/office-in-go/pkg/attendance"
	"github.com/ssshoffice/office-in-go/pkg/auth"
	"github.com/ssshoffice/office-in-go/pkg/auth/token"
	"github.com/ssshoffice/office-in-go/pkg/config"
	"github.com/ssshoffice/office-in-go/pkg/server/store"
)

// Server wires the router to the stores and auth services. Endpoints are
// registered against it by the endpoints package.
type Server struct {
	Router *mux.Router
	DB     *gorm.DB
	Config *config.OfficeConfig

	Codec      *auth.Codec
	Tokens     *token.Service
	Attendance *attendance.Manager

	UsersStore  store.UsersStore
	HealthStore store.HealthStore

	srv *http.Server
}

// NewServer creates a Server listening on host:port.
func NewServer(
	db *gorm.DB,
	cfg *config.OfficeConfig,
	codec *auth.Codec,
	tokens *token.Service,
	manager *attendance.Manager,
	usersStore store.UsersStore,
	healthStore store.HealthStore,
	host string,
	port string,
) *Server {
	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Router:      router,
		DB:          db,
		Config:      cfg,
		Codec:       codec,
		Tokens:      tokens,
		Attendance:  manager,
		UsersStore:  usersStore,
		HealthStore: healthStore,
		srv:         srv,
	}
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}
