package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/fx"

	"github.com/nriit/facultypubs/internal/authz"
	"github.com/nriit/facultypubs/internal/log"
	"github.com/nriit/facultypubs/internal/server/biz"
)

type AuditHandlersParams struct {
	fx.In

	Audit  *biz.AuditService
	Oracle *authz.Oracle
}

func NewAuditHandlers(params AuditHandlersParams) *AuditHandlers {
	return &AuditHandlers{
		Audit:  params.Audit,
		Oracle: params.Oracle,
	}
}

type AuditHandlers struct {
	Audit  *biz.AuditService
	Oracle *authz.Oracle
}

func (h *AuditHandlers) requireAdmin(c *gin.Context) bool {
	email, ok := principal(c)
	if !ok {
		return false
	}

	if !h.Oracle.IsAdministrator(c.Request.Context(), email) {
		BizError(c, fmt.Errorf("%w: only admins can read the audit log", biz.ErrForbidden))
		return false
	}

	return true
}

// List returns the newest audit entries. Administrators only.
func (h *AuditHandlers) List(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	entries, err := h.Audit.List(c.Request.Context(), cast.ToInt(c.Query("limit")))
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// Stream sends new audit entries as server-sent events until the client goes away.
func (h *AuditHandlers) Stream(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	ctx := c.Request.Context()

	entries, stop := h.Audit.Watch()
	defer stop()

	log.Debug(ctx, "audit stream opened")

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case entry, ok := <-entries:
			if !ok {
				return false
			}

			c.SSEvent("audit", entry)

			return true
		}
	})

	log.Debug(ctx, "audit stream closed")
}
