package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nriit/facultypubs/internal/spreadsheet"
)

var (
	importAs     string
	importReport string
)

func init() {
	importCmd.Flags().StringVar(&importAs, "as", "", "Email of the principal the rows are created as (required)")
	importCmd.Flags().StringVar(&importReport, "report", "", "Write the per-row ledger to this .xlsx file")
	_ = importCmd.MarkFlagRequired("as")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import publications from a spreadsheet",
	Long: `Import publications from the first sheet of an .xlsx workbook.

Every row is validated and created on its own; failing rows are reported and
do not stop the import. The JSON report is written to stdout.

Examples:
  facultypubs import publications.xlsx --as admin@nriit.edu.in
  facultypubs import publications.xlsx --as admin@nriit.edu.in --report result.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	table, err := spreadsheet.Parse(f)
	if err != nil {
		return err
	}

	return withServices(cmd.Context(), func(ctx context.Context, svc services) error {
		report, err := svc.Import.Import(ctx, importAs, table.Records())
		if err != nil {
			return err
		}

		if importReport != "" {
			out, err := os.Create(importReport)
			if err != nil {
				return err
			}
			defer out.Close()

			if err := spreadsheet.WriteReport(out, table.Headers, report.LedgerRows()); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(report)
	})
}
