package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/nriit/facultypubs/internal/log"
	_ "github.com/nriit/facultypubs/internal/pkg/sqlite"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("db: record not found")
	// ErrDuplicate is returned when an insert or update violates a unique constraint.
	ErrDuplicate = errors.New("db: unique constraint violated")
)

// Client is the record store. Queries run inside the transaction carried by the
// context when there is one.
type Client struct {
	drv     dialect.Driver
	dialect string
	sqlDB   *sql.DB
}

// Open connects to the configured database. It does not migrate the schema.
func Open(cfg Config) (*Client, error) {
	var (
		driverName string
		dbDialect  string
	)

	switch cfg.Dialect {
	case "postgres", "pgx", "postgresdb", "pg", "postgresql":
		driverName, dbDialect = "pgx", dialect.Postgres
	case "sqlite3", "sqlite", "":
		driverName, dbDialect = "sqlite3", dialect.SQLite
	case "mysql", "tidb":
		driverName, dbDialect = "mysql", dialect.MySQL
	default:
		return nil, fmt.Errorf("invalid dialect: %s", cfg.Dialect)
	}

	dsn := cfg.DSN

	if dbDialect == dialect.MySQL {
		mc, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}

		// Updates report matched rows, so rewriting a row with its own values is not a miss.
		mc.ClientFoundRows = true
		dsn = mc.FormatDSN()
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}

	if dbDialect == dialect.SQLite {
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY under concurrent writes.
		sqlDB.SetMaxOpenConns(1)
	}

	return NewClient(dbDialect, sqlDB, cfg.Debug), nil
}

// NewClient wraps an opened *sql.DB.
func NewClient(dbDialect string, sqlDB *sql.DB, debug bool) *Client {
	var drv dialect.Driver = entsql.OpenDB(dbDialect, sqlDB)
	if debug {
		drv = dialect.DebugWithContext(drv, func(ctx context.Context, args ...any) {
			log.Debug(ctx, "sql", log.Any("query", args))
		})
	}

	return &Client{
		drv:     drv,
		dialect: dbDialect,
		sqlDB:   sqlDB,
	}
}

func (c *Client) Dialect() string {
	return c.dialect
}

// Ping checks the connection, used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.sqlDB.PingContext(ctx)
}

func (c *Client) Close() error {
	return c.drv.Close()
}

// Tx starts a transaction.
func (c *Client) Tx(ctx context.Context) (*Tx, error) {
	tx, err := c.drv.Tx(ctx)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// Tx is a store transaction. Attach it to a context with NewTxContext so the repos use it.
type Tx struct {
	tx dialect.Tx
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

type txCtxKey struct{}

// NewTxContext returns a new context with the given Tx attached.
func NewTxContext(parent context.Context, tx *Tx) context.Context {
	return context.WithValue(parent, txCtxKey{}, tx)
}

// TxFromContext returns a Tx stored inside a context, or nil if there isn't one.
func TxFromContext(ctx context.Context) *Tx {
	tx, _ := ctx.Value(txCtxKey{}).(*Tx)
	return tx
}

func (c *Client) conn(ctx context.Context) dialect.ExecQuerier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx.tx
	}

	return c.drv
}

func (c *Client) builder() *entsql.DialectBuilder {
	return entsql.Dialect(c.dialect)
}

func (c *Client) exec(ctx context.Context, q entsql.Querier) (sql.Result, error) {
	query, args := q.Query()

	var res sql.Result
	if err := c.conn(ctx).Exec(ctx, query, args, &res); err != nil {
		return nil, wrapError(err)
	}

	return res, nil
}

func (c *Client) query(ctx context.Context, q entsql.Querier) (*entsql.Rows, error) {
	query, args := q.Query()

	rows := &entsql.Rows{}
	if err := c.conn(ctx).Query(ctx, query, args, rows); err != nil {
		return nil, wrapError(err)
	}

	return rows, nil
}

func wrapError(err error) error {
	if sqlgraph.IsUniqueConstraintError(err) {
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}

	return err
}
