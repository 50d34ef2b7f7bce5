package server

import (
	"github.com/gin-contrib/cors"
	"go.uber.org/fx"

	"github.com/nriit/facultypubs/internal/server/api"
	"github.com/nriit/facultypubs/internal/server/biz"
	"github.com/nriit/facultypubs/internal/server/middleware"
)

type Handlers struct {
	fx.In

	Publications *api.PublicationHandlers
	Audit        *api.AuditHandlers
	System       *api.SystemHandlers
}

func SetupRoutes(server *Server, handlers Handlers, auth *biz.AuthService) {
	server.Use(middleware.AccessLog())
	server.Use(middleware.WithLoggingTracing(server.Config.Trace))

	if server.Config.CORS.Enabled {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = server.Config.CORS.AllowedOrigins
		corsConfig.AllowMethods = server.Config.CORS.AllowedMethods
		corsConfig.AllowHeaders = server.Config.CORS.AllowedHeaders
		corsConfig.ExposeHeaders = server.Config.CORS.ExposedHeaders
		corsConfig.AllowCredentials = server.Config.CORS.AllowCredentials
		corsConfig.MaxAge = server.Config.CORS.MaxAge

		corsHandler := cors.New(corsConfig)
		server.Use(corsHandler)
		server.OPTIONS("*any", corsHandler)
	}

	timeout := middleware.WithTimeout(server.Config.RequestTimeout)

	server.GET("/health", timeout, handlers.System.Health)

	// Reads and downloads need no identity.
	publicGroup := server.Group("/form", timeout)
	{
		publicGroup.GET("/formGet", handlers.Publications.GetAll)
		publicGroup.GET("/downloadExcel", handlers.Publications.DownloadExcel)
		publicGroup.GET("/downloadTemplate", handlers.Publications.DownloadTemplate)
	}

	formGroup := server.Group("/form", middleware.WithJWTAuth(auth))
	{
		formGroup.POST("/isAdmin", timeout, handlers.Publications.IsAdmin)
		formGroup.POST("/formEntry", timeout, handlers.Publications.Create)
		formGroup.PUT("/formEntryUpdate", timeout, handlers.Publications.Update)
		formGroup.PUT("/formEntryBatchUpdate", timeout, handlers.Publications.BatchUpdate)
		formGroup.DELETE("/deleteEntry/:id", timeout, handlers.Publications.Delete)
		formGroup.POST("/bulkImport", middleware.WithTimeout(server.Config.ImportTimeout), handlers.Publications.BulkImport)
		formGroup.GET("/auditLogs", timeout, handlers.Audit.List)
		// The stream lives as long as the client stays connected.
		formGroup.GET("/auditLogs/stream", handlers.Audit.Stream)
	}
}
