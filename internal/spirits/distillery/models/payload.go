package models

import (
	"encoding/json"
	"fmt"

	revmodels "dramcask/internal/revision/models"
	id "dramcask/pkg/domain"
)

// SchemaVersionV1 is the current distillery payload schema.
const SchemaVersionV1 = "1.0.0"

type payloadV1 struct {
	Name         string            `json:"name"`
	CompanyID    id.CompanyID      `json:"company_id"`
	Translations map[string]string `json:"translations"`
	Descriptions map[string]string `json:"descriptions"`
}

// EncodePayload snapshots the entire request into a schema-versioned
// payload tagged with the entity's snapshot status.
func EncodePayload(req CreateRequest, snapshot revmodels.LifecycleStatus) (revmodels.Payload, error) {
	version := req.SchemaVersion
	if version == "" {
		version = SchemaVersionV1
	}
	if version != SchemaVersionV1 {
		return revmodels.Payload{}, fmt.Errorf("unsupported distillery payload schema %q", version)
	}

	data, err := json.Marshal(payloadV1{
		Name:         req.Name,
		CompanyID:    req.CompanyID,
		Translations: req.Translations,
		Descriptions: req.Descriptions,
	})
	if err != nil {
		return revmodels.Payload{}, fmt.Errorf("encode distillery payload: %w", err)
	}
	return revmodels.Payload{
		SchemaVersion:  version,
		SnapshotStatus: snapshot,
		Data:           data,
	}, nil
}

// ApplyPayload overwrites the distillery's domain fields from an approved
// payload, decoding by the payload's recorded schema version.
func ApplyPayload(d *Distillery, payload revmodels.Payload) error {
	switch payload.SchemaVersion {
	case SchemaVersionV1:
		var data payloadV1
		if err := json.Unmarshal(payload.Data, &data); err != nil {
			return fmt.Errorf("decode distillery payload v1: %w", err)
		}
		d.Name = data.Name
		d.CompanyID = data.CompanyID
		d.Translations = data.Translations
		d.Descriptions = data.Descriptions
		return nil
	default:
		return fmt.Errorf("unsupported distillery payload schema %q", payload.SchemaVersion)
	}
}
