// Package models defines the company aggregate and its revision payloads.
package models

import (
	"strings"

	"github.com/google/uuid"

	revmodels "dramcask/internal/revision/models"
	id "dramcask/pkg/domain"
	dErrors "dramcask/pkg/domain-errors"
)

// MaxNameLength bounds the company natural key.
const MaxNameLength = 100

// Company is a producer/bottler in the spirits catalog.
//
// Invariants:
//   - Name is non-empty, at most 100 characters, unique case-insensitively
//     (the natural key; enforced by the store's unique index)
//   - Status mutations flow through the revision engine only
//   - The delete stamp is mutated only via the engine's soft-delete contract
type Company struct {
	ID                 id.CompanyID              `json:"id"`
	ParentID           *id.CompanyID             `json:"parent_company_id,omitempty"`
	Name               string                    `json:"name"`
	Logo               string                    `json:"logo,omitempty"`
	Translations       map[string]string         `json:"translations,omitempty"`
	Descriptions       map[string]string         `json:"descriptions,omitempty"`
	IndependentBottler bool                      `json:"independent_bottler"`
	Status             revmodels.LifecycleStatus `json:"status"`
	Stamps             revmodels.Audit           `json:"stamps"`
}

// NewCompany builds a company carrying only the mandatory fields. Optional
// data arrives later through an approved revision.
func NewCompany(companyID id.CompanyID, name string, status revmodels.LifecycleStatus, audit revmodels.Audit) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "company name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "company name must be %d characters or less", MaxNameLength)
	}
	return &Company{
		ID:     companyID,
		Name:   name,
		Status: status,
		Stamps: audit,
	}, nil
}

// Engine capability contract (engine.Entity).

func (c *Company) EntityID() uuid.UUID { return uuid.UUID(c.ID) }

func (c *Company) LifecycleStatus() revmodels.LifecycleStatus { return c.Status }

func (c *Company) UpdateStatus(status revmodels.LifecycleStatus) { c.Status = status }

func (c *Company) AuditTrail() *revmodels.Audit { return &c.Stamps }

// Clone returns a deep copy, guarding store callers against aliasing.
func (c *Company) Clone() *Company {
	out := *c
	if c.ParentID != nil {
		parent := *c.ParentID
		out.ParentID = &parent
	}
	out.Translations = cloneMap(c.Translations)
	out.Descriptions = cloneMap(c.Descriptions)
	if c.Stamps.Deleted != nil {
		deleted := *c.Stamps.Deleted
		out.Stamps.Deleted = &deleted
	}
	return &out
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

// CreateRequest carries a company creation or revision submission. Name is
// the mandatory minimum; every other field is optional proposed data whose
// presence routes the entity into review.
type CreateRequest struct {
	SchemaVersion      string            `json:"schema_version,omitempty"`
	Name               string            `json:"name"`
	ParentID           *id.CompanyID     `json:"parent_company_id,omitempty"`
	Logo               *string           `json:"logo,omitempty"`
	Translations       map[string]string `json:"translations,omitempty"`
	Descriptions       map[string]string `json:"descriptions,omitempty"`
	IndependentBottler *bool             `json:"independent_bottler,omitempty"`
}

// Normalize trims surrounding whitespace off the natural key.
func (r *CreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// HasAdditionalData reports whether the request carries any field beyond
// the mandatory minimum.
func (r *CreateRequest) HasAdditionalData() bool {
	return r.ParentID != nil ||
		r.Logo != nil ||
		len(r.Translations) > 0 ||
		len(r.Descriptions) > 0 ||
		r.IndependentBottler != nil
}
