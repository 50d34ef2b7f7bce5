package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/nriit/facultypubs/internal/log"
	"github.com/nriit/facultypubs/internal/server/api"
	"github.com/nriit/facultypubs/internal/server/biz"
	"github.com/nriit/facultypubs/internal/server/dependencies"
	"github.com/nriit/facultypubs/internal/server/middleware"
	"github.com/nriit/facultypubs/internal/tracing"
)

func New(config Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery())

	if config.MaxUploadSize > 0 {
		engine.MaxMultipartMemory = config.MaxUploadSize
	}

	return &Server{
		Config: config,
		Engine: engine,
	}
}

type Server struct {
	*gin.Engine

	Config Config
	server *http.Server
}

// Start listens on the configured address and serves in the background.
func (srv *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", srv.Config.Host, srv.Config.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv.server = &http.Server{
		Addr:        addr,
		Handler:     srv.Engine,
		ReadTimeout: srv.Config.ReadTimeout,
	}

	log.Info(ctx, "run server",
		log.String("name", srv.Config.Name),
		log.String("addr", addr),
	)

	go func() {
		if err := srv.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(context.Background(), "server stopped", log.Cause(err))
		}
	}()

	return nil
}

func (srv *Server) Shutdown(ctx context.Context) error {
	if srv.server == nil {
		return nil
	}

	return srv.server.Shutdown(ctx)
}

// Run starts the HTTP server with every module wired and blocks until a signal arrives.
func Run(opts ...fx.Option) {
	app := fx.New(
		append([]fx.Option{
			fx.NopLogger,
			fx.Provide(New),
			dependencies.Module,
			biz.Module,
			api.Module,
			fx.Invoke(func(logger *log.Logger) {
				tracing.SetupLogger(logger)
				log.SetGlobalLogger(logger)
			}),
			fx.Invoke(SetupRoutes),
			fx.Invoke(func(lc fx.Lifecycle, srv *Server) {
				lc.Append(fx.Hook{
					OnStart: srv.Start,
					OnStop:  srv.Shutdown,
				})
			}),
		}, opts...)...,
	)
	app.Run()
}
