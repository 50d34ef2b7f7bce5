package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/nriit/facultypubs/internal/spreadsheet"
)

var (
	exportOutput   string
	templateOutput string
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "publications.xlsx", "Output file")
	templateCmd.Flags().StringVarP(&templateOutput, "output", "o", "publications_template.xlsx", "Output file")
	rootCmd.AddCommand(exportCmd, templateCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every publication to a spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), func(ctx context.Context, svc services) error {
			pubs, err := svc.Publications.GetAll(ctx)
			if err != nil {
				return err
			}

			return writeFile(exportOutput, func(f *os.File) error {
				return spreadsheet.WritePublications(f, pubs)
			})
		})
	},
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write an empty import template",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeFile(templateOutput, func(f *os.File) error {
			return spreadsheet.WriteTemplate(f)
		})
	},
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
