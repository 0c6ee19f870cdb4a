package engine

import (
	"context"
	"sync"
)

// inMemoryStoreTx serializes engine operations behind a single mutex. It
// gives the same "one operation at a time" guarantee the Postgres
// implementation gets from transactions, for unit tests and memory-backed
// wiring. There is no rollback: memory stores mutate in place, so the first
// failing step must be the first mutating step (the engine orders its steps
// accordingly).
type inMemoryStoreTx struct {
	mu sync.Mutex
}

func newInMemoryStoreTx() *inMemoryStoreTx {
	return &inMemoryStoreTx{}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
