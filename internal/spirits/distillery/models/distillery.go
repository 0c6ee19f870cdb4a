// Package models defines the distillery aggregate. Distilleries are the
// second revisable entity kind; they follow the same lifecycle contract as
// companies and exist to keep the review engine honest about generality.
package models

import (
	"strings"

	"github.com/google/uuid"

	revmodels "dramcask/internal/revision/models"
	id "dramcask/pkg/domain"
	dErrors "dramcask/pkg/domain-errors"
)

const maxNameLength = 100

// Distillery is a production site owned by a company.
type Distillery struct {
	ID           id.DistilleryID   `json:"id"`
	CompanyID    id.CompanyID      `json:"company_id"`
	Name         string            `json:"name"`
	Translations map[string]string `json:"translations,omitempty"`
	Descriptions map[string]string `json:"descriptions,omitempty"`

	Status revmodels.LifecycleStatus `json:"status"`
	Stamps revmodels.Audit           `json:"stamps"`
}

// NewDistillery builds a distillery carrying only mandatory fields.
func NewDistillery(distilleryID id.DistilleryID, companyID id.CompanyID, name string, status revmodels.LifecycleStatus, audit revmodels.Audit) (*Distillery, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "distillery name must not be empty")
	}
	if len(name) > maxNameLength {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "distillery name must be at most %d characters", maxNameLength)
	}
	if companyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "distillery must belong to a company")
	}
	return &Distillery{
		ID:        distilleryID,
		CompanyID: companyID,
		Name:      name,
		Status:    status,
		Stamps:    audit,
	}, nil
}

func (d *Distillery) EntityID() uuid.UUID { return uuid.UUID(d.ID) }

func (d *Distillery) LifecycleStatus() revmodels.LifecycleStatus { return d.Status }

func (d *Distillery) UpdateStatus(status revmodels.LifecycleStatus) { d.Status = status }

func (d *Distillery) AuditTrail() *revmodels.Audit { return &d.Stamps }

// Clone returns a deep copy.
func (d *Distillery) Clone() *Distillery {
	clone := *d
	clone.Translations = cloneMap(d.Translations)
	clone.Descriptions = cloneMap(d.Descriptions)
	if d.Stamps.Deleted != nil {
		deleted := *d.Stamps.Deleted
		clone.Stamps.Deleted = &deleted
	}
	return &clone
}

func cloneMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// CreateRequest carries a distillery creation or revision submission.
// Name and the owning company are the mandatory minimum.
type CreateRequest struct {
	SchemaVersion string            `json:"schema_version,omitempty"`
	Name          string            `json:"name"`
	CompanyID     id.CompanyID      `json:"company_id"`
	Translations  map[string]string `json:"translations,omitempty"`
	Descriptions  map[string]string `json:"descriptions,omitempty"`
}

// Normalize trims surrounding whitespace off the natural key.
func (r *CreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// HasAdditionalData reports whether the request carries any field beyond
// the mandatory minimum.
func (r *CreateRequest) HasAdditionalData() bool {
	return len(r.Translations) > 0 || len(r.Descriptions) > 0
}
