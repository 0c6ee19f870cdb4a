// Package store provides the Postgres transaction boundary shared by the
// revision engine's stores.
package store

import (
	"context"
	"database/sql"
	"time"

	dErrors "dramcask/pkg/domain-errors"
	txcontext "dramcask/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// PostgresTx implements engine.StoreTx over database/sql. The opened
// transaction travels through the context (pkg/platform/tx) so every store
// call inside fn lands on the same transaction.
type PostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

// TxOption configures a PostgresTx.
type TxOption func(*PostgresTx)

// WithTimeout caps each transaction when the inbound context carries no
// deadline of its own. Zero keeps the default.
func WithTimeout(d time.Duration) TxOption {
	return func(t *PostgresTx) {
		if d > 0 {
			t.timeout = d
		}
	}
}

func NewPostgresTx(db *sql.DB, opts ...TxOption) *PostgresTx {
	t := &PostgresTx{db: db}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	return tx.Commit()
}
