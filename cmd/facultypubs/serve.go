package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/nriit/facultypubs/internal/server"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Fail before fx starts so a bad config is reported plainly.
	if _, err := loadConfig(); err != nil {
		return err
	}

	server.Run(
		fxLogger(),
		fx.Provide(loadConfig),
	)

	return nil
}
