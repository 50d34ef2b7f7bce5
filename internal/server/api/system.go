package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/nriit/facultypubs/internal/build"
	"github.com/nriit/facultypubs/internal/log"
	"github.com/nriit/facultypubs/internal/server/db"
)

type SystemHandlersParams struct {
	fx.In

	DB *db.Client
}

func NewSystemHandlers(params SystemHandlersParams) *SystemHandlers {
	return &SystemHandlers{DB: params.DB}
}

type SystemHandlers struct {
	DB *db.Client
}

type healthResponse struct {
	Status   string     `json:"status"`
	Database string     `json:"database"`
	Build    build.Info `json:"build"`
}

// Health reports whether the record store answers.
func (h *SystemHandlers) Health(c *gin.Context) {
	if err := h.DB.Ping(c.Request.Context()); err != nil {
		log.Warn(c.Request.Context(), "health check failed", log.Cause(err))
		c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Database: h.DB.Dialect(), Build: build.GetBuildInfo()})

		return
	}

	c.JSON(http.StatusOK, healthResponse{Status: "ok", Database: h.DB.Dialect(), Build: build.GetBuildInfo()})
}
