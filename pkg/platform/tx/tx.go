// Package tx threads a SQL transaction through context so a registration
// save can span multiple store calls. SaveChange inserts the change
// registration, updates the chain status, and upserts the base's child
// rows; all of it must commit or roll back together.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx returns a context carrying the open transaction. A nil tx leaves
// the context unchanged.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From reports the transaction carried by ctx, if any. Stores fall back to
// their own connection when none is present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}
