// Package sqlite registers the pure Go modernc.org/sqlite driver under the "sqlite3" name
// with foreign keys enabled on every connection, which the schema migrator requires.
package sqlite

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"modernc.org/sqlite"
)

type execer interface {
	Exec(query string, args []driver.Value) (driver.Result, error)
}

type sqliteDriver struct {
	*sqlite.Driver
}

func (d sqliteDriver) Open(name string) (driver.Conn, error) {
	conn, err := d.Driver.Open(name)
	if err != nil {
		return nil, err
	}

	c, ok := conn.(execer)
	if !ok {
		_ = conn.Close()
		return nil, errors.New("sqlite: connection does not support exec")
	}

	if _, err := c.Exec("PRAGMA foreign_keys = on;", nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	return conn, nil
}

func init() {
	sql.Register("sqlite3", sqliteDriver{Driver: &sqlite.Driver{}})
}
