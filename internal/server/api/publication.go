package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"go.uber.org/fx"

	"github.com/nriit/facultypubs/internal/authz"
	"github.com/nriit/facultypubs/internal/objects"
	"github.com/nriit/facultypubs/internal/server/biz"
	"github.com/nriit/facultypubs/internal/spreadsheet"
)

type PublicationHandlersParams struct {
	fx.In

	Publications *biz.PublicationService
	Import       *biz.ImportService
}

func NewPublicationHandlers(params PublicationHandlersParams) *PublicationHandlers {
	return &PublicationHandlers{
		Publications: params.Publications,
		Import:       params.Import,
	}
}

type PublicationHandlers struct {
	Publications *biz.PublicationService
	Import       *biz.ImportService
}

// principal returns the authenticated email, writing a 401 when there is none.
func principal(c *gin.Context) (string, bool) {
	email, err := authz.UserEmail(c.Request.Context())
	if err != nil {
		JSONError(c, http.StatusUnauthorized, err)
		return "", false
	}

	return email, true
}

func (h *PublicationHandlers) IsAdmin(c *gin.Context) {
	email, ok := principal(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, isAdminResponse{IsAdmin: h.Publications.IsAdmin(c.Request.Context(), email)})
}

func (h *PublicationHandlers) Create(c *gin.Context) {
	email, ok := principal(c)
	if !ok {
		return
	}

	var req publicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, fmt.Errorf("Invalid request format: %w", err))
		return
	}

	pub, err := req.toPublication()
	if err != nil {
		BizError(c, err)
		return
	}

	created, err := h.Publications.Create(c.Request.Context(), email, pub)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, objects.MessageResponse{Message: "data stored successfully", ID: created.ID})
}

func (h *PublicationHandlers) Update(c *gin.Context) {
	email, ok := principal(c)
	if !ok {
		return
	}

	var req publicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, fmt.Errorf("Invalid request format: %w", err))
		return
	}

	pub, err := req.toPublication()
	if err != nil {
		BizError(c, err)
		return
	}

	updated, err := h.Publications.Update(c.Request.Context(), email, pub)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, objects.MessageResponse{Message: "Data updated successfully", ID: updated.ID})
}

func (h *PublicationHandlers) BatchUpdate(c *gin.Context) {
	email, ok := principal(c)
	if !ok {
		return
	}

	var reqs []patchRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Array expected"))
		return
	}

	patches := make([]objects.PublicationPatch, 0, len(reqs))

	for i, r := range reqs {
		patch, err := r.toPatch()
		if err != nil {
			BizError(c, fmt.Errorf("row %d: %w", i+1, err))
			return
		}

		patches = append(patches, patch)
	}

	count, err := h.Publications.BatchUpdate(c.Request.Context(), email, patches)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, objects.MessageResponse{Message: "Batch update successful", Count: lo.ToPtr(count)})
}

func (h *PublicationHandlers) Delete(c *gin.Context) {
	email, ok := principal(c)
	if !ok {
		return
	}

	id, err := cast.ToInt64E(c.Param("id"))
	if err != nil || id <= 0 {
		JSONError(c, http.StatusBadRequest, fmt.Errorf("invalid id: %q", c.Param("id")))
		return
	}

	if err := h.Publications.Delete(c.Request.Context(), email, id); err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, objects.MessageResponse{Message: "Publication deleted successfully", ID: id})
}

func (h *PublicationHandlers) GetAll(c *gin.Context) {
	pubs, err := h.Publications.GetAll(c.Request.Context())
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, pubs)
}

func writeWorkbook(c *gin.Context, status int, filename string, write func(buf *bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		JSONError(c, http.StatusInternalServerError, fmt.Errorf("Failed to generate Excel file: %w", err))
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(status, spreadsheet.ContentType, buf.Bytes())
}

func (h *PublicationHandlers) DownloadExcel(c *gin.Context) {
	pubs, err := h.Publications.GetAll(c.Request.Context())
	if err != nil {
		BizError(c, err)
		return
	}

	writeWorkbook(c, http.StatusOK, "publications.xlsx", func(buf *bytes.Buffer) error {
		return spreadsheet.WritePublications(buf, pubs)
	})
}

func (h *PublicationHandlers) DownloadTemplate(c *gin.Context) {
	writeWorkbook(c, http.StatusOK, "publications_template.xlsx", func(buf *bytes.Buffer) error {
		return spreadsheet.WriteTemplate(buf)
	})
}

// BulkImport runs the uploaded sheet through the import pipeline as the caller.
// With ?format=xlsx the ledger is returned as a workbook instead of JSON.
func (h *PublicationHandlers) BulkImport(c *gin.Context) {
	email, ok := principal(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("file is required"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		JSONError(c, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}
	defer f.Close()

	table, err := spreadsheet.Parse(f)
	if err != nil {
		JSONError(c, http.StatusBadRequest, err)
		return
	}

	status := http.StatusOK

	report, err := h.Import.Import(c.Request.Context(), email, table.Records())
	if err != nil {
		if biz.KindOf(err) != biz.KindCanceled {
			BizError(c, err)
			return
		}

		// Rows created before the deadline stay created, so the caller still gets their ledger.
		_ = c.Error(err)
		status = http.StatusRequestTimeout
		c.Header(ImportStatusHeader, string(biz.KindCanceled))
	}

	if c.Query("format") == "xlsx" {
		writeWorkbook(c, status, "import_report.xlsx", func(buf *bytes.Buffer) error {
			return spreadsheet.WriteReport(buf, table.Headers, report.LedgerRows())
		})

		return
	}

	if err != nil {
		c.JSON(status, partialImportResponse{
			Error:  objects.Error{Type: string(biz.KindCanceled), Message: err.Error()},
			Report: report,
		})

		return
	}

	c.JSON(status, report)
}
