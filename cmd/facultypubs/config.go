package main

import (
	"bytes"
	"fmt"

	"github.com/andreazorzetto/yh/highlight"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nriit/facultypubs/conf"
)

var previewFormat string

func init() {
	configPreviewCmd.Flags().StringVarP(&previewFormat, "format", "f", "yml", "Output format (yml, json)")
	configCmd.AddCommand(configPreviewCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := conf.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		var output string

		switch previewFormat {
		case "json":
			b, err := prettyjson.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to preview config: %w", err)
			}

			output = string(b)
		case "yml", "yaml":
			b, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to preview config: %w", err)
			}

			output, err = highlight.Highlight(bytes.NewBuffer(b))
			if err != nil {
				return fmt.Errorf("failed to preview config: %w", err)
			}
		default:
			return fmt.Errorf("unsupported format: %s", previewFormat)
		}

		fmt.Fprintln(cmd.OutOrStdout(), output)

		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := conf.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := conf.Validate(cfg); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid!")

		return nil
	},
}
