package integration

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	migrations "github.com/ssshoffice/office-in-go/db"
	"github.com/ssshoffice/office-in-go/pkg/attendance"
	"github.com/ssshoffice/office-in-go/pkg/auth"
	"github.com/ssshoffice/office-in-go/pkg/auth/token"
	"github.com/ssshoffice/office-in-go/pkg/config"
	"github.com/ssshoffice/office-in-go/pkg/server"
	"github.com/ssshoffice/office-in-go/pkg/server/endpoints"
	gormstore "github.com/ssshoffice/office-in-go/pkg/server/store/gorm"
)

// TestContext holds all the resources needed for integration tests. The
// server runs in-process; requests go through a real HTTP listener.
type TestContext struct {
	DB          *gorm.DB
	Container   testcontainers.Container
	DatabaseURL string
	ServerURL   string
	HTTPClient  *http.Client

	Codec  *auth.Codec
	Tokens *token.Service

	httpServer *httptest.Server
}

// NewTestContext starts a PostgreSQL testcontainer, migrates the schema and
// boots the API server in-process.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("office_test"),
		tcpostgres.WithUsername("office"),
		tcpostgres.WithPassword("office"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}
	connStr := fmt.Sprintf("postgres://office:office@%s:%s/office_test?sslmode=disable", host, port.Port())

	if err := runMigrations(connStr); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cfg := &config.OfficeConfig{AccessTokenTTL: 300, RefreshTokenTTL: 3600, BcryptCost: bcrypt.MinCost}
	codec := auth.NewCodec(cfg.BcryptCost)
	tokens := token.NewService([]byte("integration-test-signing-key-32b"), cfg.AccessTokenDuration(), cfg.RefreshTokenDuration())

	usersStore := gormstore.NewUsersStore(db)
	attendanceStore := gormstore.NewAttendanceStore(db)
	healthStore := gormstore.NewHealthStore(db)
	manager := attendance.NewManager(attendanceStore, usersStore)

	srv := server.NewServer(db, cfg, codec, tokens, manager, usersStore, healthStore, "127.0.0.1", "0")
	endpoints.RegisterAll(srv)

	httpServer := httptest.NewServer(srv.Router)

	return &TestContext{
		DB:          db,
		Container:   pgContainer,
		DatabaseURL: connStr,
		ServerURL:   httpServer.URL,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		Codec:       codec,
		Tokens:      tokens,
		httpServer:  httpServer,
	}, nil
}

// ResetData truncates the mutable tables between scenarios. Permission rows
// are seed data and stay.
func (tc *TestContext) ResetData() error {
	return tc.DB.Exec("TRUNCATE work_sessions, user_permissions, users").Error
}

// Close tears the server and the container down.
func (tc *TestContext) Close(ctx context.Context) {
	if tc.httpServer != nil {
		tc.httpServer.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

func runMigrations(dbURL string) error {
	migrationsFS, err := fs.Sub(migrations.Migrations, "migrations")
	if err != nil {
		return err
	}
	d, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", d, dbURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
