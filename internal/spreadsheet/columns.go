package spreadsheet

import (
	"strings"
	"unicode"
)

// Column is one column of the publications sheet. Key is the record field name.
type Column struct {
	Key     string
	Header  string
	Width   float64
	Aliases []string
}

// Columns in sheet order.
var Columns = []Column{
	{Key: "id", Header: "ID", Width: 10},
	{Key: "publicationType", Header: "Publication Type", Width: 25, Aliases: []string{"Type"}},
	{Key: "mainAuthor", Header: "Main Author", Width: 25, Aliases: []string{"Author"}},
	{Key: "title", Header: "Title", Width: 40},
	{Key: "email", Header: "Email", Width: 30, Aliases: []string{"Email ID", "E-mail"}},
	{Key: "phone", Header: "Phone", Width: 15, Aliases: []string{"Phone No", "Mobile"}},
	{Key: "dept", Header: "Dept", Width: 15, Aliases: []string{"Department"}},
	{Key: "coauthors", Header: "Coauthors", Width: 30, Aliases: []string{"Co-Authors"}},
	{Key: "journal", Header: "Journal", Width: 25, Aliases: []string{"Journal Name"}},
	{Key: "publisher", Header: "Publisher", Width: 25},
	{Key: "year", Header: "Year", Width: 10},
	{Key: "vol", Header: "Volume", Width: 10, Aliases: []string{"Vol"}},
	{Key: "issueNo", Header: "Issue No", Width: 10, Aliases: []string{"Issue"}},
	{Key: "pages", Header: "Pages", Width: 15},
	{Key: "indexation", Header: "Indexation", Width: 20, Aliases: []string{"Indexing"}},
	{Key: "issnNo", Header: "ISSN/ISBN No", Width: 20, Aliases: []string{"ISSN No", "ISBN No", "ISSN"}},
	{Key: "journalLink", Header: "Journal Link", Width: 30},
	{Key: "ugcApproved", Header: "UGC Approved", Width: 15, Aliases: []string{"UGC"}},
	{Key: "impactFactor", Header: "Impact Factor", Width: 15},
	{Key: "pdfUrl", Header: "DOI Link", Width: 40, Aliases: []string{"PDF URL", "DOI", "PDF Link"}},
}

var headerIndex = buildHeaderIndex()

func buildHeaderIndex() map[string]string {
	index := make(map[string]string)

	for _, c := range Columns {
		index[normalizeHeader(c.Key)] = c.Key
		index[normalizeHeader(c.Header)] = c.Key

		for _, alias := range c.Aliases {
			index[normalizeHeader(alias)] = c.Key
		}
	}

	return index
}

// normalizeHeader lower-cases and drops everything but letters and digits,
// so "Co-Authors", "coauthors" and "Co Authors" are the same header.
func normalizeHeader(s string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// KeyForHeader maps a sheet header to a record field name.
func KeyForHeader(header string) (string, bool) {
	key, ok := headerIndex[normalizeHeader(header)]
	return key, ok
}
