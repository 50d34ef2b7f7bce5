package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// maxHeaderScan bounds how far down the header row is searched for.
const maxHeaderScan = 10

var (
	ErrNoSheet  = errors.New("workbook has no sheets")
	ErrNoHeader = errors.New("header row not found: expected a Title column")
)

// Row is a non-blank data row. SheetRow is the 1-based row number in the sheet.
type Row struct {
	SheetRow int
	Cells    []string
}

// Table is the parsed first sheet of a workbook.
type Table struct {
	Headers   []string
	HeaderRow int
	Rows      []Row
}

// Record is a data row keyed by record field name.
type Record struct {
	SheetRow int
	Values   map[string]string
	// Original holds the cells as read, one per header.
	Original []string
}

// Parse reads the first sheet. The header row is the first row with a Title column,
// which skips a leading title banner. Blank rows are skipped but keep their numbering.
func Parse(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	return newTable(rows)
}

func newTable(rows [][]string) (*Table, error) {
	headerIdx := -1

	for i := 0; i < len(rows) && i < maxHeaderScan; i++ {
		if isHeaderRow(rows[i]) {
			headerIdx = i
			break
		}
	}

	if headerIdx < 0 {
		return nil, ErrNoHeader
	}

	headers := trimTrailingEmpty(rows[headerIdx])
	table := &Table{
		Headers:   make([]string, len(headers)),
		HeaderRow: headerIdx + 1,
	}

	for i, h := range headers {
		table.Headers[i] = strings.TrimSpace(h)
	}

	for i := headerIdx + 1; i < len(rows); i++ {
		if isBlank(rows[i]) {
			continue
		}

		// Cells past the last header are kept so the original row survives verbatim.
		cells := make([]string, max(len(table.Headers), len(rows[i])))
		copy(cells, rows[i])

		table.Rows = append(table.Rows, Row{SheetRow: i + 1, Cells: cells})
	}

	return table, nil
}

func isHeaderRow(row []string) bool {
	for _, cell := range row {
		if key, ok := KeyForHeader(cell); ok && key == "title" {
			return true
		}
	}

	return false
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}

	return row[:end]
}

// Records maps every row to record field names. Unknown headers are ignored; when two
// headers map to the same field the first non-empty cell wins.
func (t *Table) Records() []Record {
	keys := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		keys[i], _ = KeyForHeader(h)
	}

	records := make([]Record, 0, len(t.Rows))

	for _, row := range t.Rows {
		values := make(map[string]string)

		for i, cell := range row.Cells {
			if i >= len(keys) || keys[i] == "" {
				continue
			}

			cell = strings.TrimSpace(cell)
			if values[keys[i]] == "" {
				values[keys[i]] = cell
			}
		}

		records = append(records, Record{
			SheetRow: row.SheetRow,
			Values:   values,
			Original: row.Cells,
		})
	}

	return records
}
