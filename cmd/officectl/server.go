package main

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssshoffice/office-in-go/pkg/attendance"
	"github.com/ssshoffice/office-in-go/pkg/auth"
	"github.com/ssshoffice/office-in-go/pkg/auth/token"
	"github.com/ssshoffice/office-in-go/pkg/config"
	"github.com/ssshoffice/office-in-go/pkg/db"
	"github.com/ssshoffice/office-in-go/pkg/server"
	"github.com/ssshoffice/office-in-go/pkg/server/endpoints"
	gormstore "github.com/ssshoffice/office-in-go/pkg/server/store/gorm"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the office attendance API server",
	Long: `Run the office attendance API server.

To run the server requires the environment variables OFFICE_TOKEN_KEY and DATABASE_URL.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Validate required environment variables first (fail fast)
		tokenKeyB64, ok := os.LookupEnv("OFFICE_TOKEN_KEY")
		if !ok {
			fmt.Fprintln(os.Stderr, "OFFICE_TOKEN_KEY environment variable is required")
			os.Exit(1)
		}

		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		// Run migrations unless --no-migrate is set
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Println("Running database migrations...")
			if err := runMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		signingKey, err := base64.StdEncoding.DecodeString(tokenKeyB64)
		if err != nil {
			fmt.Println("Bad OFFICE_TOKEN_KEY:", err)
			os.Exit(1)
		}

		database, err := db.Connect(db.Config{})
		if err != nil {
			fmt.Println("Unable to connect to DB:", err)
			os.Exit(1)
		}

		// Read TTLs and hash cost through config.Get on every use so the
		// watcher's reloads reach them.
		cfg := config.Get()
		codec := auth.NewCodecWithCost(func() int { return config.Get().BcryptCost })
		tokens := token.NewServiceWithTTLs(
			signingKey,
			func() time.Duration { return config.Get().AccessTokenDuration() },
			func() time.Duration { return config.Get().RefreshTokenDuration() },
		)

		usersStore := gormstore.NewUsersStore(database)
		attendanceStore := gormstore.NewAttendanceStore(database)
		healthStore := gormstore.NewHealthStore(database)
		manager := attendance.NewManager(attendanceStore, usersStore)

		// Reload config on file changes for the lifetime of the server.
		stop := make(chan struct{})
		defer close(stop)
		go func() {
			if err := config.Watch(stop); err != nil {
				log.Printf("config watch disabled: %v", err)
			}
		}()

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		s := server.NewServer(database, cfg, codec, tokens, manager, usersStore, healthStore, host, port)

		endpoints.RegisterAll(s)

		log.Printf("Running server at http://%s:%s...\n", host, port)
		log.Fatal(s.Start())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}
