//go:build integration

package revision

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dramcask/internal/revision/models"
	id "dramcask/pkg/domain"
	"dramcask/pkg/platform/sentinel"
	"dramcask/pkg/testutil/containers"
)

func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pg := containers.NewPostgresContainer(t)
	store := NewPostgres(pg.DB)
	ctx := context.Background()

	actor := id.UserID(uuid.New())
	now := time.Now().UTC().Truncate(time.Microsecond)

	pending := func(entityID uuid.UUID) *models.Revision {
		rev, err := models.NewRevision(models.EntityTypeCompany, entityID, models.Payload{
			SchemaVersion:  models.DefaultSchemaVersion,
			SnapshotStatus: models.StatusDraft,
			Data:           json.RawMessage(`{"name":"Acme","logo":"logo.png"}`),
		}, actor, now)
		require.NoError(t, err)
		return rev
	}

	t.Run("create and load round trip", func(t *testing.T) {
		pg.TruncateTables(t)
		rev := pending(uuid.New())

		require.NoError(t, store.Create(ctx, rev))

		loaded, err := store.FindByID(ctx, rev.ID)
		require.NoError(t, err)
		assert.Equal(t, rev.EntityID, loaded.EntityID)
		assert.Equal(t, rev.Payload, loaded.Payload)
		assert.Equal(t, models.RevisionInReview, loaded.Status)
		assert.Equal(t, rev.Created, loaded.Created)
		assert.Nil(t, loaded.Reviewed)
	})

	t.Run("partial index refuses a second pending revision", func(t *testing.T) {
		pg.TruncateTables(t)
		entityID := uuid.New()
		require.NoError(t, store.Create(ctx, pending(entityID)))

		err := store.Create(ctx, pending(entityID))
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("a reviewed revision frees the pending slot", func(t *testing.T) {
		pg.TruncateTables(t)
		entityID := uuid.New()
		rev := pending(entityID)
		require.NoError(t, store.Create(ctx, rev))

		require.NoError(t, rev.Review(actor, models.RevisionApproved, now))
		require.NoError(t, store.Update(ctx, rev))

		_, err := store.FindPending(ctx, models.EntityTypeCompany, entityID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		loaded, err := store.FindByID(ctx, rev.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RevisionApproved, loaded.Status)
		require.NotNil(t, loaded.Reviewed)

		// Next submission is accepted again.
		require.NoError(t, store.Create(ctx, pending(entityID)))
	})

	t.Run("a second review decision does not overwrite the first", func(t *testing.T) {
		pg.TruncateTables(t)
		rev := pending(uuid.New())
		require.NoError(t, store.Create(ctx, rev))

		// Two reviewers each loaded the revision while it was pending.
		first, err := store.FindByID(ctx, rev.ID)
		require.NoError(t, err)
		second, err := store.FindByID(ctx, rev.ID)
		require.NoError(t, err)

		require.NoError(t, first.Review(actor, models.RevisionApproved, now))
		require.NoError(t, store.Update(ctx, first))

		otherActor := id.UserID(uuid.New())
		require.NoError(t, second.Review(otherActor, models.RevisionRejected, now.Add(time.Second)))
		err = store.Update(ctx, second)
		assert.ErrorIs(t, err, sentinel.ErrInvalidState)

		loaded, err := store.FindByID(ctx, rev.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RevisionApproved, loaded.Status)
		require.NotNil(t, loaded.Reviewed)
		assert.Equal(t, actor, loaded.Reviewed.By)
	})
}
