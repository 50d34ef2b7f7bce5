package db

type Config struct {
	// Dialect is one of sqlite3, mysql or postgres (aliases are accepted).
	Dialect string `conf:"dialect" yaml:"dialect" json:"dialect"`
	// DSN is passed to the driver as is. MySQL DSNs need parseTime=true.
	DSN   string `conf:"dsn" yaml:"dsn" json:"dsn"`
	Debug bool   `conf:"debug" yaml:"debug" json:"debug"`
}

// AdminList is the administrator allow-list seeded into the store at start-up.
type AdminList []string
