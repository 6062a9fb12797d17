// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "accessd",
	Short: "accessd is a role-based access control policy service",
	Long: `accessd stores roles, permissions and their many-to-many associations,
resolves a user's effective capabilities at request time, and renders
authorization decisions over a JSON API.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
