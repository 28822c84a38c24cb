// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taskery",
	Short: "Taskery is a task management backend",
	Long: `Taskery is a task management backend exposing a JSON REST API over
users, task groups, tasks, and the role-carrying memberships between them.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
