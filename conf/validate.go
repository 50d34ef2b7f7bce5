package conf

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/nriit/facultypubs/internal/pkg/watcher"
	"github.com/nriit/facultypubs/internal/pkg/xcache"
	"github.com/nriit/facultypubs/internal/server/biz"
)

// Validate reports every problem in the configuration at once.
func Validate(cfg Config) error {
	var result *multierror.Error

	fail := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf(format, args...))
	}

	if cfg.APIServer.Port <= 0 || cfg.APIServer.Port > 65535 {
		fail("server.port must be between 1 and 65535")
	}

	if cfg.APIServer.CORS.Enabled && len(cfg.APIServer.CORS.AllowedOrigins) == 0 {
		fail("server.cors.allowed_origins cannot be empty when CORS is enabled")
	}

	switch cfg.DB.Dialect {
	case "", "sqlite3", "sqlite", "mysql", "tidb", "postgres", "pgx", "postgresdb", "pg", "postgresql":
	default:
		fail("db.dialect %q is not supported", cfg.DB.Dialect)
	}

	if cfg.DB.DSN == "" {
		fail("db.dsn cannot be empty")
	}

	if cfg.Log.Name == "" {
		fail("log.name cannot be empty")
	}

	if cfg.Auth.JWTSecret == "" {
		fail("auth.jwt_secret cannot be empty")
	}

	switch cfg.Publications.OwnerPolicy {
	case "", biz.OwnerPolicyClient, biz.OwnerPolicyPrincipal:
	default:
		fail("publications.owner_policy must be %q or %q", biz.OwnerPolicyClient, biz.OwnerPolicyPrincipal)
	}

	switch cfg.Cache.Mode {
	case "", xcache.ModeMemory:
	case xcache.ModeRedis, xcache.ModeTwoLevel:
		if !cfg.Redis.Enabled() {
			fail("cache.mode %q requires redis.url or redis.addr", cfg.Cache.Mode)
		}
	default:
		fail("cache.mode %q is not supported", cfg.Cache.Mode)
	}

	switch cfg.Audit.Feed.Mode {
	case "", watcher.ModeMemory:
	case watcher.ModeRedis:
		if !cfg.Redis.Enabled() {
			fail("audit.feed.mode redis requires redis.url or redis.addr")
		}
	default:
		fail("audit.feed.mode %q is not supported", cfg.Audit.Feed.Mode)
	}

	return result.ErrorOrNil()
}
