package dependencies

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/nriit/facultypubs/internal/log"
	"github.com/nriit/facultypubs/internal/pkg/xredis"
	"github.com/nriit/facultypubs/internal/server/db"
)

var Module = fx.Module("dependencies",
	fx.Provide(log.New),
	fx.Provide(NewDB),
	fx.Provide(NewRedisClient),
)

type DBParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    db.Config
	Admins    db.AdminList
}

// NewDB opens the record store. The schema is migrated and the administrator
// allow-list seeded on start.
func NewDB(params DBParams) (*db.Client, error) {
	client, err := db.Open(params.Config)
	if err != nil {
		return nil, err
	}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Migrate(ctx); err != nil {
				return err
			}

			added, err := db.NewAdminRepo(client).Seed(ctx, params.Admins)
			if err != nil {
				return err
			}

			log.Info(ctx, "record store ready",
				log.String("dialect", client.Dialect()),
				log.Int("admins_seeded", added),
			)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}

// NewRedisClient connects to redis when it is configured and returns nil otherwise.
func NewRedisClient(lc fx.Lifecycle, cfg xredis.Config) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	client, err := xredis.NewClient(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}
