// Package conf loads the service configuration from config.yml, a .env file and
// FACULTYPUBS_* environment variables, in increasing order of precedence.
package conf

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/nriit/facultypubs/internal/log"
	"github.com/nriit/facultypubs/internal/pkg/xcache"
	"github.com/nriit/facultypubs/internal/pkg/xredis"
	"github.com/nriit/facultypubs/internal/server"
	"github.com/nriit/facultypubs/internal/server/biz"
	"github.com/nriit/facultypubs/internal/server/db"
)

const EnvPrefix = "FACULTYPUBS"

type Config struct {
	fx.Out `yaml:"-" json:"-"`

	APIServer    server.Config          `conf:"server" yaml:"server" json:"server"`
	DB           db.Config              `conf:"db" yaml:"db" json:"db"`
	Log          log.Config             `conf:"log" yaml:"log" json:"log"`
	Redis        xredis.Config          `conf:"redis" yaml:"redis" json:"redis"`
	Cache        xcache.Config          `conf:"cache" yaml:"cache" json:"cache"`
	Auth         biz.AuthConfig         `conf:"auth" yaml:"auth" json:"auth"`
	Audit        biz.AuditConfig        `conf:"audit" yaml:"audit" json:"audit"`
	Publications biz.PublicationsConfig `conf:"publications" yaml:"publications" json:"publications"`
	Admins       db.AdminList           `conf:"admins" yaml:"admins" json:"admins"`
}

// Load reads the configuration. An empty file searches config.yml in ., ./conf and
// /etc/facultypubs; a missing file is not an error, a missing explicit file is.
func Load(file string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without a default are unknown to viper until bound.
	for _, key := range []string{"redis.db"} {
		_ = v.BindEnv(key)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./conf")
		v.AddConfigPath("/etc/facultypubs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "conf"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			stringToStringSliceHook,
		)
	})
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// stringToStringSliceHook splits comma separated env values into string slices,
// including named slice types such as db.AdminList.
func stringToStringSliceHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice || to.Elem().Kind() != reflect.String {
		return data, nil
	}

	raw, _ := data.(string)
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}

	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts, nil
}

func setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"server.host":                   "0.0.0.0",
		"server.port":                   8090,
		"server.name":                   "facultypubs",
		"server.read_timeout":           "30s",
		"server.request_timeout":        "30s",
		"server.import_timeout":         "5m",
		"server.max_upload_size":        32 << 20,
		"server.trace.trace_header":     "FP-Trace-Id",
		"server.trace.request_header":   "FP-Request-Id",
		"server.debug":                  false,
		"server.cors.enabled":           false,
		"server.cors.allowed_origins":   []string{},
		"server.cors.allowed_methods":   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		"server.cors.allowed_headers":   []string{"Origin", "Content-Type", "Authorization"},
		"server.cors.exposed_headers":   []string{"Content-Disposition"},
		"server.cors.allow_credentials": false,
		"server.cors.max_age":           "12h",

		"db.dialect": "sqlite3",
		"db.dsn":     "file:facultypubs.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		"db.debug":   false,

		"log.name":             "facultypubs",
		"log.level":            "info",
		"log.encoding":         "json",
		"log.output":           "stdio",
		"log.debug":            false,
		"log.file.path":        "logs/facultypubs.log",
		"log.file.max_size":    100,
		"log.file.max_age":     30,
		"log.file.max_backups": 10,
		"log.file.local_time":  true,
		"log.file.compress":    false,

		"redis.url":                      "",
		"redis.addr":                     "",
		"redis.username":                 "",
		"redis.password":                 "",
		"redis.tls":                      false,
		"redis.tls_insecure_skip_verify": false,
		"redis.dial_timeout":             "5s",

		"cache.mode":                    xcache.ModeMemory,
		"cache.memory.expiration":       "1m",
		"cache.memory.cleanup_interval": "5m",
		"cache.redis.expiration":        "5m",
		"cache.redis.key_prefix":        "facultypubs:admin:",

		"auth.jwt_secret":  "",
		"auth.token_ttl":   "168h",
		"auth.email_claim": "userEmail",

		"audit.buffer":        256,
		"audit.write_timeout": "5s",
		"audit.feed.mode":     "memory",
		"audit.feed.channel":  "facultypubs:audit",
		"audit.feed.buffer":   64,

		"publications.owner_policy":          biz.OwnerPolicyClient,
		"publications.allowed_email_domains": []string{},
		"publications.import_error_limit":    5,

		"admins": []string{},
	}

	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}
