package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "dramcask/pkg/domain-errors"
)

func TestPostgresTx(t *testing.T) {
	t.Run("cancelled context aborts before opening a transaction", func(t *testing.T) {
		boundary := NewPostgresTx(nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := boundary.RunInTx(ctx, func(context.Context) error {
			t.Fatal("fn must not run on a cancelled context")
			return nil
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	t.Run("WithTimeout overrides the default deadline", func(t *testing.T) {
		boundary := NewPostgresTx(nil, WithTimeout(250*time.Millisecond))
		assert.Equal(t, 250*time.Millisecond, boundary.timeout)
	})

	t.Run("a zero timeout keeps the default", func(t *testing.T) {
		boundary := NewPostgresTx(nil, WithTimeout(0))
		assert.Equal(t, time.Duration(0), boundary.timeout)
	})
}
