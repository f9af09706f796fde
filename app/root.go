// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/buildtrack/buildtrack/internal/config"
)

var (
	cfg        config.Config
	configPath string
	err        error

	rootCmd = &cobra.Command{
		Use:   "buildtrack",
		Short: "BuildTrack is a web-based management tool for construction projects",
		Long: `BuildTrack is a web-based management tool for construction projects
that tracks the full workflow from CRM lead to closure, with role-based
access control over every module.`,
		Args: cobra.OnlyValidArgs,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "Path to the configuration directory")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
