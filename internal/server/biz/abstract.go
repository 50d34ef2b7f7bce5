package biz

import (
	"context"

	"github.com/nriit/facultypubs/internal/server/db"
)

type AbstractService struct {
	db *db.Client
}

// RunInTransaction runs fn inside a store transaction carried by the context.
// A transaction already on the context is reused. The transaction is rolled back when
// fn returns an error or panics.
func (a *AbstractService) RunInTransaction(ctx context.Context, fn func(context.Context) error) (err error) {
	if tx := db.TxFromContext(ctx); tx != nil {
		return fn(ctx)
	}

	tx, err := a.db.Tx(ctx)
	if err != nil {
		return storeError(err)
	}

	committed := false

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()

			panic(r)
		}

		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(db.NewTxContext(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeError(err)
	}

	committed = true

	return nil
}
