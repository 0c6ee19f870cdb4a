package handler

import (
	"encoding/json"
	"time"

	revmodels "dramcask/internal/revision/models"
	"dramcask/internal/spirits/company/models"
)

// CompanyResponse is the HTTP representation of a company.
type CompanyResponse struct {
	ID                 string            `json:"id"`
	ParentCompanyID    string            `json:"parent_company_id,omitempty"`
	Name               string            `json:"name"`
	Logo               string            `json:"logo,omitempty"`
	Translations       map[string]string `json:"translations,omitempty"`
	Descriptions       map[string]string `json:"descriptions,omitempty"`
	IndependentBottler bool              `json:"independent_bottler"`
	Status             string            `json:"status"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	DeletedAt          *time.Time        `json:"deleted_at,omitempty"`
}

// FromCompany converts a domain company into its HTTP representation.
func FromCompany(c *models.Company) CompanyResponse {
	resp := CompanyResponse{
		ID:                 c.ID.String(),
		Name:               c.Name,
		Logo:               c.Logo,
		Translations:       c.Translations,
		Descriptions:       c.Descriptions,
		IndependentBottler: c.IndependentBottler,
		Status:             string(c.Status),
		CreatedAt:          c.Stamps.Created.At,
		UpdatedAt:          c.Stamps.Updated.At,
	}
	if c.ParentID != nil {
		resp.ParentCompanyID = c.ParentID.String()
	}
	if c.Stamps.Deleted != nil {
		resp.DeletedAt = &c.Stamps.Deleted.At
	}
	return resp
}

// RevisionResponse is the HTTP representation of a revision.
type RevisionResponse struct {
	ID             string          `json:"id"`
	EntityType     string          `json:"entity_type"`
	EntityID       string          `json:"entity_id"`
	SchemaVersion  string          `json:"schema_version"`
	SnapshotStatus string          `json:"snapshot_status"`
	Data           json.RawMessage `json:"data"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	CreatedBy      string          `json:"created_by"`
	ReviewedAt     *time.Time      `json:"reviewed_at,omitempty"`
	ReviewedBy     string          `json:"reviewed_by,omitempty"`
}

// FromRevision converts a domain revision into its HTTP representation.
func FromRevision(rev *revmodels.Revision) RevisionResponse {
	resp := RevisionResponse{
		ID:             rev.ID.String(),
		EntityType:     string(rev.EntityType),
		EntityID:       rev.EntityID.String(),
		SchemaVersion:  rev.SchemaVersion,
		SnapshotStatus: string(rev.Payload.SnapshotStatus),
		Data:           rev.Payload.Data,
		Status:         string(rev.Status),
		CreatedAt:      rev.Created.At,
		CreatedBy:      rev.Created.By.String(),
	}
	if rev.Reviewed != nil {
		resp.ReviewedAt = &rev.Reviewed.At
		resp.ReviewedBy = rev.Reviewed.By.String()
	}
	return resp
}
