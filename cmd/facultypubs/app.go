package main

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/nriit/facultypubs/conf"
	"github.com/nriit/facultypubs/internal/log"
	"github.com/nriit/facultypubs/internal/server/biz"
	"github.com/nriit/facultypubs/internal/server/dependencies"
	"github.com/nriit/facultypubs/internal/tracing"
)

type logger struct{}

func (l *logger) LogEvent(event fxevent.Event) {
	log.Debug(context.Background(), "fx event", log.Any("event", event))
}

func fxLogger() fx.Option {
	return fx.WithLogger(func() fxevent.Logger {
		return &logger{}
	})
}

// loadConfig loads and validates the configuration.
func loadConfig() (conf.Config, error) {
	cfg, err := conf.Load(configFile)
	if err != nil {
		return conf.Config{}, err
	}

	if err := conf.Validate(cfg); err != nil {
		return conf.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// services is what the offline commands work with.
type services struct {
	fx.In

	Publications *biz.PublicationService
	Import       *biz.ImportService
	Auth         *biz.AuthService
}

// withServices starts the store and the services without the HTTP server, runs fn and
// stops them again, which drains pending audit entries.
func withServices(ctx context.Context, fn func(ctx context.Context, svc services) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var svc services

	app := fx.New(
		fxLogger(),
		fx.Provide(func() conf.Config { return cfg }),
		dependencies.Module,
		biz.Module,
		fx.Invoke(func(logger *log.Logger) {
			tracing.SetupLogger(logger)
			log.SetGlobalLogger(logger)
		}),
		fx.Populate(&svc),
	)

	if err := app.Start(ctx); err != nil {
		return err
	}

	runErr := fn(ctx, svc)

	if err := app.Stop(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		runErr = err
	}

	return runErr
}
