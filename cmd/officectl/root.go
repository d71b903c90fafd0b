package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "officectl",
	Short: "Office attendance server control tool",
	Long:  `officectl manages the office attendance server: run the API server, migrate the database and create users.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
