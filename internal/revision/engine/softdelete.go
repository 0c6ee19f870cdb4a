package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dramcask/internal/revision/models"
	id "dramcask/pkg/domain"
	dErrors "dramcask/pkg/domain-errors"
	"dramcask/pkg/platform/audit"
	"dramcask/pkg/requestcontext"
)

// The soft-delete contract. These three operations are the only legal ways
// to mutate an entity's delete stamp. Soft delete never alters the
// lifecycle status: a restored entity comes back in the status it was
// deleted in.

// SoftDelete marks the entity deleted. Fails with NotFound when the id is
// unknown and with InvalidState when the entity is already deleted.
func (e *Engine[E, REQ]) SoftDelete(ctx context.Context, entityID uuid.UUID) error {
	return e.setDeleteStamp(ctx, entityID, audit.EventEntityDeleted, (*models.Audit).SoftDelete)
}

// Restore clears the delete stamp. Fails with NotFound when the id is
// unknown and with InvalidState when the entity is not deleted.
func (e *Engine[E, REQ]) Restore(ctx context.Context, entityID uuid.UUID) error {
	return e.setDeleteStamp(ctx, entityID, audit.EventEntityRestored, (*models.Audit).Restore)
}

// IsDeleted reports whether the entity carries a delete stamp. Fails with
// NotFound when the id is unknown.
func (e *Engine[E, REQ]) IsDeleted(ctx context.Context, entityID uuid.UUID) (bool, error) {
	entity, err := e.entities.FindByID(ctx, entityID)
	if err != nil {
		return false, e.wrapEntityErr(err)
	}
	return entity.AuditTrail().IsDeleted(), nil
}

func (e *Engine[E, REQ]) setDeleteStamp(ctx context.Context, entityID uuid.UUID, action audit.Action, mutate func(trail *models.Audit, actor id.UserID, now time.Time) error) error {
	actor := requestcontext.UserID(ctx)
	now := requestcontext.Now(ctx)

	return e.tx.RunInTx(ctx, func(txCtx context.Context) error {
		entity, err := e.entities.FindByID(txCtx, entityID)
		if err != nil {
			return e.wrapEntityErr(err)
		}
		if err := mutate(entity.AuditTrail(), actor, now); err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				// Preserve the reason ("already deleted" / "not deleted").
				return dErrors.New(dErrors.CodeInvalidState, dErrors.MessageOf(err))
			}
			return err
		}
		if err := e.entities.Update(txCtx, entity); err != nil {
			return e.wrapEntityErr(err)
		}
		return e.emit(txCtx, action, entityID, nil)
	})
}
