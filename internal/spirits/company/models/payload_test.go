package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	revmodels "dramcask/internal/revision/models"
	id "dramcask/pkg/domain"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestEncodePayload(t *testing.T) {
	t.Run("snapshots the full request", func(t *testing.T) {
		parent := id.CompanyID(uuid.New())
		req := CreateRequest{
			Name:               "Acme",
			ParentID:           &parent,
			Logo:               strPtr("logo.png"),
			Translations:       map[string]string{"de": "Acme GmbH"},
			IndependentBottler: boolPtr(true),
		}

		payload, err := EncodePayload(req, revmodels.StatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, SchemaVersionV1, payload.SchemaVersion)
		assert.Equal(t, revmodels.StatusConfirmed, payload.SnapshotStatus)
		assert.NotEmpty(t, payload.Data)
	})

	t.Run("rejects an unknown schema version", func(t *testing.T) {
		_, err := EncodePayload(CreateRequest{SchemaVersion: "9.9.9", Name: "Acme"}, revmodels.StatusDraft)
		require.Error(t, err)
	})
}

func TestApplyPayload(t *testing.T) {
	audit := revmodels.NewAudit(id.UserID(uuid.New()), time.Now())

	t.Run("overwrites all revisable fields", func(t *testing.T) {
		company, err := NewCompany(id.CompanyID(uuid.New()), "Acme", revmodels.StatusInReview, audit)
		require.NoError(t, err)

		parent := id.CompanyID(uuid.New())
		payload, err := EncodePayload(CreateRequest{
			Name:               "Acme Distillers",
			ParentID:           &parent,
			Logo:               strPtr("logo.png"),
			Descriptions:       map[string]string{"en": "An august spirits house."},
			IndependentBottler: boolPtr(true),
		}, revmodels.StatusDraft)
		require.NoError(t, err)

		require.NoError(t, ApplyPayload(company, payload))
		assert.Equal(t, "Acme Distillers", company.Name)
		require.NotNil(t, company.ParentID)
		assert.Equal(t, parent, *company.ParentID)
		assert.Equal(t, "logo.png", company.Logo)
		assert.Equal(t, "An august spirits house.", company.Descriptions["en"])
		assert.True(t, company.IndependentBottler)
	})

	t.Run("absent optional fields reset to zero values", func(t *testing.T) {
		company, err := NewCompany(id.CompanyID(uuid.New()), "Acme", revmodels.StatusInReview, audit)
		require.NoError(t, err)
		company.Logo = "old.png"
		company.IndependentBottler = true

		payload, err := EncodePayload(CreateRequest{Name: "Acme"}, revmodels.StatusDraft)
		require.NoError(t, err)

		require.NoError(t, ApplyPayload(company, payload))
		assert.Empty(t, company.Logo)
		assert.False(t, company.IndependentBottler)
	})

	t.Run("rejects an unknown schema version", func(t *testing.T) {
		company, err := NewCompany(id.CompanyID(uuid.New()), "Acme", revmodels.StatusInReview, audit)
		require.NoError(t, err)

		err = ApplyPayload(company, revmodels.Payload{SchemaVersion: "9.9.9", Data: []byte(`{}`)})
		require.Error(t, err)
	})
}

func TestCreateRequestHasAdditionalData(t *testing.T) {
	assert.False(t, (&CreateRequest{Name: "Acme"}).HasAdditionalData())
	assert.True(t, (&CreateRequest{Name: "Acme", Logo: strPtr("logo.png")}).HasAdditionalData())
	assert.True(t, (&CreateRequest{Name: "Acme", Translations: map[string]string{"de": "x"}}).HasAdditionalData())
	assert.True(t, (&CreateRequest{Name: "Acme", IndependentBottler: boolPtr(false)}).HasAdditionalData())
}

func TestNewCompanyValidation(t *testing.T) {
	audit := revmodels.NewAudit(id.UserID(uuid.New()), time.Now())

	_, err := NewCompany(id.CompanyID(uuid.New()), "   ", revmodels.StatusDraft, audit)
	require.Error(t, err)

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	_, err = NewCompany(id.CompanyID(uuid.New()), string(long), revmodels.StatusDraft, audit)
	require.Error(t, err)
}
