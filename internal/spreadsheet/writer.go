package spreadsheet

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/nriit/facultypubs/internal/objects"
)

const (
	// ContentType is the MIME type of the generated workbooks.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SheetName       = "Publications"
	ReportSheetName = "Import Report"
	Banner          = "FACULTY PAPER PUBLICATIONS"
)

type styles struct {
	banner  int
	header  int
	success int
	failed  int
}

func newStyles(f *excelize.File) (styles, error) {
	var (
		s   styles
		err error
	)

	if s.banner, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 16, Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return s, err
	}

	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4CAF50"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}); err != nil {
		return s, err
	}

	if s.success, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"C6EFCE"}},
	}); err != nil {
		return s, err
	}

	s.failed, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFC7CE"}},
	})

	return s, err
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// writeHeader writes the banner on row 1 and the headers on row 2.
func writeHeader(f *excelize.File, sheet string, st styles, headers []string, widths []float64) error {
	last := cell(len(headers), 1)

	if err := f.MergeCell(sheet, "A1", last); err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, "A1", Banner); err != nil {
		return err
	}

	if err := f.SetCellStyle(sheet, "A1", last, st.banner); err != nil {
		return err
	}

	if err := f.SetRowHeight(sheet, 1, 30); err != nil {
		return err
	}

	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}

	if err := f.SetSheetRow(sheet, "A2", &row); err != nil {
		return err
	}

	if err := f.SetCellStyle(sheet, "A2", cell(len(headers), 2), st.header); err != nil {
		return err
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	return nil
}

func newWorkbook(sheet string) (*excelize.File, styles, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, styles{}, err
	}

	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, styles{}, err
	}

	return f, st, nil
}

func columnHeaders() ([]string, []float64) {
	headers := make([]string, len(Columns))
	widths := make([]float64, len(Columns))

	for i, c := range Columns {
		headers[i] = c.Header
		widths[i] = c.Width
	}

	return headers, widths
}

// WriteTemplate writes an empty publications sheet with the banner and headers.
func WriteTemplate(w io.Writer) error {
	return WritePublications(w, nil)
}

// WritePublications writes all records below the banner and header rows.
func WritePublications(w io.Writer, pubs []objects.Publication) error {
	f, st, err := newWorkbook(SheetName)
	if err != nil {
		return err
	}
	defer f.Close()

	headers, widths := columnHeaders()
	if err := writeHeader(f, SheetName, st, headers, widths); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, p := range pubs {
		row := publicationRow(p)
		if err := f.SetSheetRow(SheetName, cell(1, i+3), &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+3, err)
		}
	}

	_, err = f.WriteTo(w)

	return err
}

func publicationRow(p objects.Publication) []any {
	var year any = ""
	if p.Year != nil {
		year = *p.Year
	}

	return []any{
		p.ID, string(p.PublicationType), p.MainAuthor, p.Title, p.Email, p.Phone, p.Dept,
		p.Coauthors, p.Journal, p.Publisher, year, p.Vol, p.IssueNo, p.Pages, p.Indexation,
		p.IssnNo, p.JournalLink, string(p.UGCApproved), p.ImpactFactor, p.PdfURL,
	}
}

// ReportRow is one line of an import report.
type ReportRow struct {
	SheetRow int
	Original []string
	Success  bool
	Message  string
}

// WriteReport writes one row per imported row: the original cells followed by the
// sheet row, the status and the error message. Rows are filled green or red by status.
func WriteReport(w io.Writer, headers []string, rows []ReportRow) error {
	f, st, err := newWorkbook(ReportSheetName)
	if err != nil {
		return err
	}
	defer f.Close()

	// Rows wider than the header get unnamed columns so no original cell is lost.
	width := len(headers)
	for _, r := range rows {
		width = max(width, len(r.Original))
	}

	headers = append(append([]string{}, headers...), make([]string, width-len(headers))...)
	all := append(append([]string{}, headers...), "Sheet Row", "Status", "Error")

	widths := make([]float64, len(all))
	for i, h := range all {
		widths[i] = 15
		if key, ok := KeyForHeader(h); ok {
			for _, c := range Columns {
				if c.Key == key {
					widths[i] = c.Width
				}
			}
		}
	}

	widths[len(all)-1] = 50

	if err := writeHeader(f, ReportSheetName, st, all, widths); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		line := make([]any, 0, len(all))
		for j := range headers {
			var v string
			if j < len(r.Original) {
				v = r.Original[j]
			}

			line = append(line, v)
		}

		status, style := "Failed", st.failed
		if r.Success {
			status, style = "Success", st.success
		}

		line = append(line, strconv.Itoa(r.SheetRow), status, r.Message)

		rowNum := i + 3
		if err := f.SetSheetRow(ReportSheetName, cell(1, rowNum), &line); err != nil {
			return fmt.Errorf("write row %d: %w", rowNum, err)
		}

		if err := f.SetCellStyle(ReportSheetName, cell(1, rowNum), cell(len(all), rowNum), style); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)

	return err
}
