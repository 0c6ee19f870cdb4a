package service

import (
	"github.com/google/uuid"

	revmodels "dramcask/internal/revision/models"
	"dramcask/internal/spirits/company/models"
	id "dramcask/pkg/domain"
)

// adapter supplies company-specific knowledge to the generic engine.
type adapter struct{}

func (adapter) EntityType() revmodels.EntityType { return revmodels.EntityTypeCompany }

func (adapter) HasAdditionalData(req models.CreateRequest) bool {
	return req.HasAdditionalData()
}

func (adapter) NewEntity(req models.CreateRequest, status revmodels.LifecycleStatus, audit revmodels.Audit) (*models.Company, error) {
	return models.NewCompany(id.CompanyID(uuid.New()), req.Name, status, audit)
}

func (adapter) BuildPayload(req models.CreateRequest, snapshot revmodels.LifecycleStatus) (revmodels.Payload, error) {
	return models.EncodePayload(req, snapshot)
}

func (adapter) ApplyPayload(c *models.Company, payload revmodels.Payload) error {
	return models.ApplyPayload(c, payload)
}
