// Package main provides the facultypubs CLI: the HTTP server and offline tooling.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nriit/facultypubs/internal/build"
)

// configFile overrides the config.yml search.
var configFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "facultypubs",
	Short: "Faculty publication records service",
	Long: `facultypubs stores faculty publication records and serves them over HTTP.

Without a subcommand it starts the server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: config.yml in ., ./conf or /etc/facultypubs)")
	rootCmd.Version = build.Version
	rootCmd.AddCommand(buildInfoCmd)
}

var buildInfoCmd = &cobra.Command{
	Use:   "build-info",
	Short: "Show build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), build.GetBuildInfo())
	},
}
