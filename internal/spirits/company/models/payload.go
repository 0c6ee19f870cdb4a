package models

import (
	"encoding/json"
	"fmt"

	revmodels "dramcask/internal/revision/models"
	id "dramcask/pkg/domain"
)

// SchemaVersionV1 is the current company payload schema.
const SchemaVersionV1 = "1.0.0"

// payloadV1 is the structural snapshot of proposed company field values.
// The full request is captured, not just the optional fields, so approval
// can overwrite the entity wholesale. New schema versions get their own
// struct; historical payloads are decoded by their recorded version, never
// assumed to be latest-shape.
type payloadV1 struct {
	Name               string            `json:"name"`
	ParentCompanyID    *id.CompanyID     `json:"parent_company_id"`
	Logo               *string           `json:"logo"`
	Translations       map[string]string `json:"translations"`
	Descriptions       map[string]string `json:"descriptions"`
	IndependentBottler *bool             `json:"independent_bottler"`
}

// EncodePayload snapshots the entire request into a schema-versioned
// payload tagged with the entity's snapshot status.
func EncodePayload(req CreateRequest, snapshot revmodels.LifecycleStatus) (revmodels.Payload, error) {
	version := req.SchemaVersion
	if version == "" {
		version = SchemaVersionV1
	}
	if version != SchemaVersionV1 {
		return revmodels.Payload{}, fmt.Errorf("unsupported company payload schema %q", version)
	}

	data, err := json.Marshal(payloadV1{
		Name:               req.Name,
		ParentCompanyID:    req.ParentID,
		Logo:               req.Logo,
		Translations:       req.Translations,
		Descriptions:       req.Descriptions,
		IndependentBottler: req.IndependentBottler,
	})
	if err != nil {
		return revmodels.Payload{}, fmt.Errorf("encode company payload: %w", err)
	}
	return revmodels.Payload{
		SchemaVersion:  version,
		SnapshotStatus: snapshot,
		Data:           data,
	}, nil
}

// ApplyPayload overwrites the company's domain fields from an approved
// payload, decoding by the payload's recorded schema version.
func ApplyPayload(c *Company, payload revmodels.Payload) error {
	switch payload.SchemaVersion {
	case SchemaVersionV1:
		var data payloadV1
		if err := json.Unmarshal(payload.Data, &data); err != nil {
			return fmt.Errorf("decode company payload v1: %w", err)
		}
		c.Name = data.Name
		c.ParentID = data.ParentCompanyID
		c.Logo = ""
		if data.Logo != nil {
			c.Logo = *data.Logo
		}
		c.Translations = data.Translations
		c.Descriptions = data.Descriptions
		c.IndependentBottler = data.IndependentBottler != nil && *data.IndependentBottler
		return nil
	default:
		return fmt.Errorf("unsupported company payload schema %q", payload.SchemaVersion)
	}
}
