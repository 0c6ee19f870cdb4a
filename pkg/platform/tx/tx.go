// Package tx carries a SQL transaction through the context so the revision
// engine's dual writes (entity plus revision, plus the audit outbox entry)
// land on one transaction without the stores knowing about each other.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores the transaction opened by the engine's StoreTx boundary.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts the ambient transaction, if the caller runs inside one.
// Stores fall back to their pooled connection when it is absent.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}
