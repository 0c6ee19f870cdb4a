package service

import (
	"github.com/google/uuid"

	revmodels "dramcask/internal/revision/models"
	"dramcask/internal/spirits/distillery/models"
	id "dramcask/pkg/domain"
)

// adapter supplies distillery-specific knowledge to the generic engine.
type adapter struct{}

func (adapter) EntityType() revmodels.EntityType { return revmodels.EntityTypeDistillery }

func (adapter) HasAdditionalData(req models.CreateRequest) bool {
	return req.HasAdditionalData()
}

func (adapter) NewEntity(req models.CreateRequest, status revmodels.LifecycleStatus, audit revmodels.Audit) (*models.Distillery, error) {
	return models.NewDistillery(id.DistilleryID(uuid.New()), req.CompanyID, req.Name, status, audit)
}

func (adapter) BuildPayload(req models.CreateRequest, snapshot revmodels.LifecycleStatus) (revmodels.Payload, error) {
	return models.EncodePayload(req, snapshot)
}

func (adapter) ApplyPayload(d *models.Distillery, payload revmodels.Payload) error {
	return models.ApplyPayload(d, payload)
}
