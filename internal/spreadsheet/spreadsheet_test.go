package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nriit/facultypubs/internal/objects"
)

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		if row == nil {
			continue
		}

		require.NoError(t, f.SetSheetRow("Sheet1", cell(1, i+1), &row))
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	return &buf
}

func TestKeyForHeader(t *testing.T) {
	tests := map[string]string{
		"Main Author":  "mainAuthor",
		"mainAuthor":   "mainAuthor",
		"Co-Authors":   "coauthors",
		"coauthors":    "coauthors",
		"ISSN No":      "issnNo",
		"ISSN/ISBN No": "issnNo",
		"PDF URL":      "pdfUrl",
		"DOI Link":     "pdfUrl",
		"Volume":       "vol",
		"Issue No":     "issueNo",
		" TITLE ":      "title",
	}

	for header, want := range tests {
		got, ok := KeyForHeader(header)
		assert.True(t, ok, header)
		assert.Equal(t, want, got, header)
	}

	_, ok := KeyForHeader("Remarks")
	assert.False(t, ok)
}

func TestParse_SkipsBannerAndBlankRows(t *testing.T) {
	buf := workbook(t,
		[]any{Banner},
		[]any{"Title", "Main Author", "Email", "Year", "Remarks"},
		[]any{"Paper A", "Lakshmi", "a@nriit.edu.in", 2021, "first"},
		nil,
		[]any{"Paper B", "Ravi", "b@nriit.edu.in", "", ""},
	)

	table, err := Parse(buf)
	require.NoError(t, err)

	assert.Equal(t, 2, table.HeaderRow)
	assert.Equal(t, []string{"Title", "Main Author", "Email", "Year", "Remarks"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 3, table.Rows[0].SheetRow)
	assert.Equal(t, 5, table.Rows[1].SheetRow)

	records := table.Records()
	require.Len(t, records, 2)

	assert.Equal(t, map[string]string{
		"title":      "Paper A",
		"mainAuthor": "Lakshmi",
		"email":      "a@nriit.edu.in",
		"year":       "2021",
	}, records[0].Values)
	assert.Equal(t, []string{"Paper A", "Lakshmi", "a@nriit.edu.in", "2021", "first"}, records[0].Original)
	assert.Equal(t, []string{"Paper B", "Ravi", "b@nriit.edu.in", "", ""}, records[1].Original)
}

func TestParse_HeaderOnFirstRow(t *testing.T) {
	buf := workbook(t,
		[]any{"title", "email", "Co-Authors", "Coauthors"},
		[]any{"Paper", "x@nriit.edu.in", "", "Ravi"},
	)

	table, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, table.HeaderRow)

	records := table.Records()
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].SheetRow)
	assert.Equal(t, "Ravi", records[0].Values["coauthors"])
}

func TestParse_KeepsCellsPastLastHeader(t *testing.T) {
	buf := workbook(t,
		[]any{"Title", "Email"},
		[]any{"Paper", "x@nriit.edu.in", "stray note", "", "tail"},
	)

	table, err := Parse(buf)
	require.NoError(t, err)

	records := table.Records()
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Paper", "x@nriit.edu.in", "stray note", "", "tail"}, records[0].Original)
	assert.Equal(t, map[string]string{"title": "Paper", "email": "x@nriit.edu.in"}, records[0].Values)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(workbook(t, []any{"Name", "Email"}, []any{"x", "y"}))
	require.ErrorIs(t, err, ErrNoHeader)

	_, err = Parse(bytes.NewBufferString("not a workbook"))
	require.Error(t, err)
}

func TestWritePublications_RoundTrip(t *testing.T) {
	pubs := []objects.Publication{
		{
			ID:              7,
			PublicationType: objects.PublicationTypeJournal,
			MainAuthor:      "K. Lakshmi",
			Title:           "Graph Mining",
			Email:           "owner@nriit.edu.in",
			Year:            lo.ToPtr(2023),
			Pages:           "1-9",
			UGCApproved:     objects.UGCApprovalYes,
			PdfURL:          "https://doi.org/10.1/x",
		},
		{ID: 8, Title: "No Year", Email: "owner@nriit.edu.in"},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePublications(&buf, pubs))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	banner, err := f.GetCellValue(SheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, Banner, banner)

	last, err := f.GetCellValue(SheetName, "T2")
	require.NoError(t, err)
	assert.Equal(t, "DOI Link", last)

	table, err := Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, table.HeaderRow)

	records := table.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "7", records[0].Values["id"])
	assert.Equal(t, "Journal Paper", records[0].Values["publicationType"])
	assert.Equal(t, "2023", records[0].Values["year"])
	assert.Equal(t, "Yes", records[0].Values["ugcApproved"])
	assert.Equal(t, "https://doi.org/10.1/x", records[0].Values["pdfUrl"])
	assert.Equal(t, "", records[1].Values["year"])
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))

	table, err := Parse(&buf)
	require.NoError(t, err)
	assert.Len(t, table.Headers, len(Columns))
	assert.Empty(t, table.Rows)
}

func TestWriteReport(t *testing.T) {
	headers := []string{"Title", "Email"}
	rows := []ReportRow{
		{SheetRow: 3, Original: []string{"A", "a@nriit.edu.in"}, Success: true},
		{SheetRow: 4, Original: []string{"B"}, Message: "Email is required"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, headers, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(ReportSheetName)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, []string{"Title", "Email", "Sheet Row", "Status", "Error"}, got[1])
	assert.Equal(t, []string{"A", "a@nriit.edu.in", "3", "Success"}, got[2])
	assert.Equal(t, []string{"B", "", "4", "Failed", "Email is required"}, got[3])

	okStyle, err := f.GetCellStyle(ReportSheetName, "D3")
	require.NoError(t, err)
	failStyle, err := f.GetCellStyle(ReportSheetName, "D4")
	require.NoError(t, err)
	assert.NotEqual(t, okStyle, failStyle)
}

func TestWriteReport_WideRow(t *testing.T) {
	rows := []ReportRow{
		{SheetRow: 2, Original: []string{"A", "a@nriit.edu.in", "extra"}, Message: "Title already exists"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, []string{"Title", "Email"}, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(ReportSheetName)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []string{"Title", "Email", "", "Sheet Row", "Status", "Error"}, got[1])
	assert.Equal(t, []string{"A", "a@nriit.edu.in", "extra", "2", "Failed", "Title already exists"}, got[2])
}
