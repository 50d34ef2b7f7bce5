package biz

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/nriit/facultypubs/internal/authz"
	"github.com/nriit/facultypubs/internal/objects"
	"github.com/nriit/facultypubs/internal/pkg/watcher"
	"github.com/nriit/facultypubs/internal/pkg/xcache"
	"github.com/nriit/facultypubs/internal/server/db"
)

var Module = fx.Module("biz",
	fx.Provide(db.NewPublicationRepo),
	fx.Provide(db.NewAdminRepo),
	fx.Provide(db.NewAuditRepo),
	fx.Provide(NewAdminOracle),
	fx.Provide(NewAuditFeed),
	fx.Provide(NewAuthService),
	fx.Provide(NewAuditService),
	fx.Provide(NewPublicationService),
	fx.Provide(NewImportService),
	fx.Invoke(func(lc fx.Lifecycle, svc *AuditService) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return svc.Start(ctx)
			},
			OnStop: func(ctx context.Context) error {
				return svc.Stop(ctx)
			},
		})
	}),
)

// NewAdminOracle builds the authorization oracle with the configured lookup cache.
// The redis client may be nil unless the cache runs in redis or two-level mode.
func NewAdminOracle(cfg xcache.Config, admins *db.AdminRepo, client *redis.Client) (*authz.Oracle, error) {
	cache, err := xcache.NewFromConfig[bool](cfg, client)
	if err != nil {
		return nil, err
	}

	return authz.NewOracle(admins, cache), nil
}

// NewAuditFeed builds the notifier new audit entries are published on.
func NewAuditFeed(cfg AuditConfig, client *redis.Client) (watcher.Notifier[objects.AuditEntry], error) {
	return watcher.New[objects.AuditEntry](cfg.Feed, client)
}
