package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nriit/facultypubs/internal/server/biz"
	"github.com/nriit/facultypubs/internal/server/db"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.APIServer.Port)
	assert.Equal(t, 30*time.Second, cfg.APIServer.RequestTimeout)
	assert.Equal(t, 5*time.Minute, cfg.APIServer.ImportTimeout)
	assert.Equal(t, "sqlite3", cfg.DB.Dialect)
	assert.Equal(t, "facultypubs", cfg.Log.Name)
	assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, biz.OwnerPolicyClient, cfg.Publications.OwnerPolicy)
	assert.Equal(t, 5, cfg.Publications.ImportErrorLimit)
	assert.Equal(t, "memory", cfg.Audit.Feed.Mode)
	assert.Empty(t, cfg.Admins)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  request_timeout: 10s
db:
  dialect: postgres
  dsn: postgres://localhost/pubs
auth:
  jwt_secret: from-file
publications:
  allowed_email_domains:
    - nriit.edu.in
admins:
  - admin@nriit.edu.in
redis:
  db: 2
`)

	t.Setenv("FACULTYPUBS_AUTH_JWT_SECRET", "from-env")
	t.Setenv("FACULTYPUBS_ADMINS", "a@nriit.edu.in, b@nriit.edu.in")
	t.Setenv("FACULTYPUBS_PUBLICATIONS_OWNER_POLICY", "principal")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.APIServer.Port)
	assert.Equal(t, 10*time.Second, cfg.APIServer.RequestTimeout)
	assert.Equal(t, "postgres", cfg.DB.Dialect)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"nriit.edu.in"}, cfg.Publications.AllowedEmailDomains)
	assert.Equal(t, db.AdminList{"a@nriit.edu.in", "b@nriit.edu.in"}, cfg.Admins)
	assert.Equal(t, biz.OwnerPolicyPrincipal, cfg.Publications.OwnerPolicy)
	require.NotNil(t, cfg.Redis.DB)
	assert.Equal(t, 2, *cfg.Redis.DB)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret cannot be empty")

	cfg.Auth.JWTSecret = "secret"
	require.NoError(t, Validate(cfg))

	cfg.APIServer.Port = 0
	cfg.DB.Dialect = "oracle"
	cfg.Cache.Mode = "redis"
	cfg.Audit.Feed.Mode = "kafka"
	cfg.Publications.OwnerPolicy = "anyone"

	err = Validate(cfg)
	require.Error(t, err)

	for _, want := range []string{
		"server.port must be between 1 and 65535",
		`db.dialect "oracle" is not supported`,
		`cache.mode "redis" requires redis.url or redis.addr`,
		`audit.feed.mode "kafka" is not supported`,
		"publications.owner_policy must be",
	} {
		assert.Contains(t, err.Error(), want)
	}
}
