//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	revmodels "dramcask/internal/revision/models"
	"dramcask/internal/spirits/company/models"
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

	fullCompany := func(name string) *models.Company {
		audit := revmodels.NewAudit(id.UserID(uuid.New()), time.Now().UTC().Truncate(time.Microsecond))
		company, err := models.NewCompany(id.CompanyID(uuid.New()), name, revmodels.StatusDraft, audit)
		require.NoError(t, err)
		company.Logo = "logo.png"
		company.Translations = map[string]string{"de": name + " GmbH"}
		company.Descriptions = map[string]string{"en": "A spirits house."}
		company.IndependentBottler = true
		return company
	}

	t.Run("create and load round trip", func(t *testing.T) {
		pg.TruncateTables(t)
		company := fullCompany("Acme")

		require.NoError(t, store.Create(ctx, company))

		loaded, err := store.FindByID(ctx, uuid.UUID(company.ID))
		require.NoError(t, err)
		assert.Equal(t, company.Name, loaded.Name)
		assert.Equal(t, company.Logo, loaded.Logo)
		assert.Equal(t, company.Translations, loaded.Translations)
		assert.Equal(t, company.Descriptions, loaded.Descriptions)
		assert.True(t, loaded.IndependentBottler)
		assert.Equal(t, company.Stamps.Created, loaded.Stamps.Created)
		assert.Nil(t, loaded.Stamps.Deleted)
	})

	t.Run("name index refuses duplicates case-insensitively", func(t *testing.T) {
		pg.TruncateTables(t)
		require.NoError(t, store.Create(ctx, fullCompany("Acme")))

		err := store.Create(ctx, fullCompany("ACME"))
		assert.ErrorIs(t, err, sentinel.ErrDuplicateKey)

		loaded, err := store.FindByName(ctx, "aCmE")
		require.NoError(t, err)
		assert.Equal(t, "Acme", loaded.Name)
	})

	t.Run("update persists status and delete stamps", func(t *testing.T) {
		pg.TruncateTables(t)
		company := fullCompany("Acme")
		require.NoError(t, store.Create(ctx, company))

		company.Status = revmodels.StatusConfirmed
		deletedAt := time.Now().UTC().Truncate(time.Microsecond)
		require.NoError(t, company.Stamps.SoftDelete(id.UserID(uuid.New()), deletedAt))
		require.NoError(t, store.Update(ctx, company))

		loaded, err := store.FindByID(ctx, uuid.UUID(company.ID))
		require.NoError(t, err)
		assert.Equal(t, revmodels.StatusConfirmed, loaded.Status)
		require.NotNil(t, loaded.Stamps.Deleted)
		assert.Equal(t, deletedAt, loaded.Stamps.Deleted.At)
	})

	t.Run("update of a missing row fails with not found", func(t *testing.T) {
		pg.TruncateTables(t)

		err := store.Update(ctx, fullCompany("Ghost"))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
