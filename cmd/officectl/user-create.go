package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ssshoffice/office-in-go/pkg/auth"
	"github.com/ssshoffice/office-in-go/pkg/auth/permission"
	"github.com/ssshoffice/office-in-go/pkg/config"
	"github.com/ssshoffice/office-in-go/pkg/db"
	"github.com/ssshoffice/office-in-go/pkg/server/store"
	gormstore "github.com/ssshoffice/office-in-go/pkg/server/store/gorm"
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create [login-id]",
	Short: "Create a user account",
	Long: `Create a user account.

The password is read from the --password flag or generated if the flag is
omitted. A generated password is output to STDOUT.

Permission codes are granted with --grant; the baseline login code is always
included so the account can actually sign in.

Example:
  officectl user create alice --display-name Alice
  officectl user create alice --display-name Alice --grant A0000003,R0000003
  officectl user create root --display-name Root --grant S0000001 --rank 9`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		loginID := args[0]
		displayName, _ := cmd.Flags().GetString("display-name")
		if displayName == "" {
			displayName = loginID
		}
		password, _ := cmd.Flags().GetString("password")
		grants, _ := cmd.Flags().GetString("grant")
		rank, _ := cmd.Flags().GetInt("rank")

		generated := false
		if password == "" {
			var err error
			password, err = generatePassword()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to generate password: %v\n", err)
				os.Exit(1)
			}
			generated = true
		}

		subject, err := createUser(loginID, displayName, password, parseGrants(grants), rank)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "Created user '%s' (%s)\n", loginID, subject.ID)
		if generated {
			fmt.Printf("Password for %s: %s\n", loginID, password)
		}
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().StringP("display-name", "d", "", "display name (default: login id)")
	userCreateCmd.Flags().StringP("password", "w", "", "password (generated if omitted)")
	userCreateCmd.Flags().StringP("grant", "g", "", "comma-separated permission codes to grant")
	userCreateCmd.Flags().IntP("rank", "r", 0, "rank tier for cross-user operations")
}

// parseGrants splits the --grant list and ensures the baseline code is
// present.
func parseGrants(grants string) []string {
	codes := []string{permission.CanUseOffice}
	for _, code := range strings.Split(grants, ",") {
		code = strings.TrimSpace(code)
		if code == "" || code == permission.CanUseOffice {
			continue
		}
		codes = append(codes, code)
	}
	return codes
}

func generatePassword() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

func createUser(loginID, displayName, password string, codes []string, rank int) (*store.Subject, error) {
	database, err := db.Connect(db.Config{})
	if err != nil {
		return nil, err
	}

	codec := auth.NewCodec(config.Get().BcryptCost)
	hashed, err := codec.Hash(password)
	if err != nil {
		return nil, err
	}

	subject := &store.Subject{
		ID:              uuid.NewString(),
		LoginID:         loginID,
		DisplayName:     displayName,
		HashedPassword:  hashed,
		PermissionCodes: codes,
		Rank:            rank,
	}

	users := gormstore.NewUsersStore(database)
	if err := users.Create(subject); err != nil {
		return nil, err
	}
	return subject, nil
}
