// Package dbtest opens migrated SQLite stores for tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"entgo.io/ent/dialect"
	"github.com/stretchr/testify/require"

	"github.com/nriit/facultypubs/internal/server/db"
)

// Open returns a migrated client backed by a database file in the test's temp dir.
func Open(t testing.TB) *db.Client {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "facultypubs.db") + "?_pragma=busy_timeout(5000)"

	sqlDB, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	client := db.NewClient(dialect.SQLite, sqlDB, false)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Migrate(context.Background()))

	return client
}
