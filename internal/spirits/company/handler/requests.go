package handler

import (
	"strings"

	"dramcask/internal/spirits/company/models"
	id "dramcask/pkg/domain"
	dErrors "dramcask/pkg/domain-errors"
)

// CompanyRequest is the HTTP request body for company creation and
// revision submission. Name is the mandatory minimum; any other field
// present routes the company into review.
type CompanyRequest struct {
	SchemaVersion      string            `json:"schema_version,omitempty"`
	Name               string            `json:"name"`
	ParentCompanyID    string            `json:"parent_company_id,omitempty"`
	Logo               *string           `json:"logo,omitempty"`
	Translations       map[string]string `json:"translations,omitempty"`
	Descriptions       map[string]string `json:"descriptions,omitempty"`
	IndependentBottler *bool             `json:"independent_bottler,omitempty"`

	// Parsed values (populated by Validate)
	parsedParentID *id.CompanyID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CompanyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > 100 {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 100 characters")
	}
	if r.Logo != nil && len(*r.Logo) > 255 {
		return dErrors.New(dErrors.CodeValidation, "logo must be at most 255 characters")
	}

	if r.ParentCompanyID != "" {
		parentID, err := id.ParseCompanyID(r.ParentCompanyID)
		if err != nil {
			return err
		}
		r.parsedParentID = &parentID
	}
	return nil
}

// ToCreateRequest builds the domain request from the validated body.
func (r *CompanyRequest) ToCreateRequest() models.CreateRequest {
	return models.CreateRequest{
		SchemaVersion:      r.SchemaVersion,
		Name:               r.Name,
		ParentID:           r.parsedParentID,
		Logo:               r.Logo,
		Translations:       r.Translations,
		Descriptions:       r.Descriptions,
		IndependentBottler: r.IndependentBottler,
	}
}
