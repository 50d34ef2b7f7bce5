package biz

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/nriit/facultypubs/internal/log"
	"github.com/nriit/facultypubs/internal/objects"
	"github.com/nriit/facultypubs/internal/spreadsheet"
)

const defaultImportErrorLimit = 5

type RowStatus string

const (
	RowStatusSuccess RowStatus = "Success"
	RowStatusFailed  RowStatus = "Failed"
)

// RowStage tells whether a row was rejected before or by the create call.
type RowStage string

const (
	RowStageValidation RowStage = "validation"
	RowStageSubmission RowStage = "submission"
)

// RowOutcome is one ledger entry. RowNumber counts data rows from 1; SheetRow is
// the row as numbered in the uploaded sheet.
type RowOutcome struct {
	RowNumber     int       `json:"rowNumber"`
	SheetRow      int       `json:"sheetRow"`
	Status        RowStatus `json:"status"`
	Error         string    `json:"error,omitempty"`
	Kind          Kind      `json:"kind,omitempty"`
	Stage         RowStage  `json:"stage,omitempty"`
	PublicationID int64     `json:"publicationId,omitempty"`
	Original      []string  `json:"originalRowData"`
}

type ImportReport struct {
	Total     int          `json:"total"`
	Succeeded int          `json:"successCount"`
	Failed    int          `json:"failedCount"`
	Errors    []string     `json:"errors"`
	Rows      []RowOutcome `json:"rows"`
}

// RecordCreator is the create operation rows are submitted to.
type RecordCreator interface {
	Create(ctx context.Context, principal string, pub objects.Publication) (objects.Publication, error)
}

type ImportServiceParams struct {
	fx.In

	Config       PublicationsConfig
	Publications *PublicationService
}

func NewImportService(params ImportServiceParams) *ImportService {
	return newImportService(params.Publications, params.Publications.Validator(), params.Config.ImportErrorLimit)
}

func newImportService(creator RecordCreator, validator Validator, errorLimit int) *ImportService {
	if errorLimit <= 0 {
		errorLimit = defaultImportErrorLimit
	}

	return &ImportService{creator: creator, validator: validator, errorLimit: errorLimit}
}

// ImportService submits spreadsheet rows one by one as creates and keeps a ledger.
type ImportService struct {
	creator    RecordCreator
	validator  Validator
	errorLimit int
}

// Import processes rows in order. A failing row never stops the following rows.
// When ctx is done no further row is attempted; rows already created stay created and
// the partial report is returned with the context error.
func (s *ImportService) Import(ctx context.Context, principal string, records []spreadsheet.Record) (ImportReport, error) {
	report := ImportReport{Errors: []string{}, Rows: make([]RowOutcome, 0, len(records))}

	if len(records) == 0 {
		return report, invalid("file", "Sheet is empty")
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			log.Warn(ctx, "import interrupted", log.Int("attempted", report.Total), log.Int("rows", len(records)), log.Cause(err))
			return report, err
		}

		outcome := s.importRow(ctx, principal, i+1, rec)
		report.add(outcome, s.errorLimit)
	}

	log.Info(ctx, "import finished",
		log.String("principal", principal),
		log.Int("total", report.Total),
		log.Int("succeeded", report.Succeeded),
		log.Int("failed", report.Failed),
	)

	return report, nil
}

func (s *ImportService) importRow(ctx context.Context, principal string, rowNumber int, rec spreadsheet.Record) RowOutcome {
	outcome := RowOutcome{
		RowNumber: rowNumber,
		SheetRow:  rec.SheetRow,
		Original:  rec.Original,
	}

	if outcome.SheetRow == 0 {
		outcome.SheetRow = rowNumber
	}

	pub, err := s.validateRow(rec.Values)
	if err != nil {
		return outcome.failed(RowStageValidation, err)
	}

	created, err := s.creator.Create(ctx, principal, pub)
	if err != nil {
		return outcome.failed(RowStageSubmission, err)
	}

	outcome.Status = RowStatusSuccess
	outcome.PublicationID = created.ID

	return outcome
}

// validateRow checks email, phone, year and pages in that order. Pages are only
// checked when the row carries a year.
func (s *ImportService) validateRow(values map[string]string) (objects.Publication, error) {
	pub := recordFromValues(values)

	if err := s.validator.ValidateOwnerEmail(pub.Email); err != nil {
		return pub, err
	}

	if pub.Phone != "" {
		if err := ValidatePhone(pub.Phone); err != nil {
			return pub, err
		}
	}

	year, err := ParseYear(values["year"])
	if err != nil {
		return pub, err
	}

	if year != nil {
		if err := s.validator.CheckYear(*year); err != nil {
			return pub, err
		}

		if pub.Pages != "" {
			if err := ValidatePages(pub.Pages); err != nil {
				return pub, err
			}
		}
	}

	pub.Year = year

	return normalize(pub), nil
}

func recordFromValues(v map[string]string) objects.Publication {
	return objects.Publication{
		PublicationType: objects.PublicationType(v["publicationType"]),
		MainAuthor:      v["mainAuthor"],
		Title:           v["title"],
		Email:           v["email"],
		Phone:           v["phone"],
		Dept:            v["dept"],
		Coauthors:       v["coauthors"],
		Journal:         v["journal"],
		Publisher:       v["publisher"],
		Vol:             v["vol"],
		IssueNo:         v["issueNo"],
		Pages:           v["pages"],
		Indexation:      v["indexation"],
		IssnNo:          v["issnNo"],
		JournalLink:     v["journalLink"],
		UGCApproved:     objects.UGCApproval(v["ugcApproved"]),
		ImpactFactor:    v["impactFactor"],
		PdfURL:          v["pdfUrl"],
	}
}

func (o RowOutcome) failed(stage RowStage, err error) RowOutcome {
	o.Status = RowStatusFailed
	o.Stage = stage
	o.Kind = KindOf(err)
	o.Error = err.Error()

	return o
}

func (r *ImportReport) add(o RowOutcome, errorLimit int) {
	r.Total++
	r.Rows = append(r.Rows, o)

	if o.Status == RowStatusSuccess {
		r.Succeeded++
		return
	}

	r.Failed++

	if len(r.Errors) < errorLimit {
		r.Errors = append(r.Errors, fmt.Sprintf("Row %d: %s", o.SheetRow, o.Error))
	}
}

// LedgerRows converts the ledger for the spreadsheet report.
func (r ImportReport) LedgerRows() []spreadsheet.ReportRow {
	rows := make([]spreadsheet.ReportRow, len(r.Rows))

	for i, o := range r.Rows {
		rows[i] = spreadsheet.ReportRow{
			SheetRow: o.SheetRow,
			Original: o.Original,
			Success:  o.Status == RowStatusSuccess,
			Message:  o.Error,
		}
	}

	return rows
}
