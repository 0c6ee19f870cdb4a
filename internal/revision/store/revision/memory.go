package revision

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"dramcask/internal/revision/models"
	id "dramcask/pkg/domain"
	"dramcask/pkg/platform/sentinel"
)

type pendingKey struct {
	entityType models.EntityType
	entityID   uuid.UUID
}

// InMemory is a revision store for unit tests and memory-backed wiring. It
// mirrors the Postgres semantics, including the partial unique constraint:
// Create fails with sentinel.ErrConflict when the target already has an
// IN_REVIEW revision.
type InMemory struct {
	mu        sync.RWMutex
	revisions map[id.RevisionID]*models.Revision
	pending   map[pendingKey]id.RevisionID
}

func NewInMemory() *InMemory {
	return &InMemory{
		revisions: make(map[id.RevisionID]*models.Revision),
		pending:   make(map[pendingKey]id.RevisionID),
	}
}

func (s *InMemory) Create(_ context.Context, rev *models.Revision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.revisions[rev.ID]; exists {
		return fmt.Errorf("revision %s: %w", rev.ID, sentinel.ErrDuplicateKey)
	}
	key := pendingKey{entityType: rev.EntityType, entityID: rev.EntityID}
	if rev.Status == models.RevisionInReview {
		if _, exists := s.pending[key]; exists {
			return fmt.Errorf("pending revision for %s/%s: %w", rev.EntityType, rev.EntityID, sentinel.ErrConflict)
		}
		s.pending[key] = rev.ID
	}
	s.revisions[rev.ID] = clone(rev)
	return nil
}

func (s *InMemory) Update(_ context.Context, rev *models.Revision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.revisions[rev.ID]
	if !exists {
		return fmt.Errorf("revision %s: %w", rev.ID, sentinel.ErrNotFound)
	}
	// Reviewed revisions are immutable, matching the Postgres status guard.
	if stored.Status != models.RevisionInReview {
		return fmt.Errorf("revision %s already reviewed: %w", rev.ID, sentinel.ErrInvalidState)
	}
	if rev.Status != models.RevisionInReview {
		delete(s.pending, pendingKey{entityType: rev.EntityType, entityID: rev.EntityID})
	}
	s.revisions[rev.ID] = clone(rev)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, revisionID id.RevisionID) (*models.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rev, exists := s.revisions[revisionID]
	if !exists {
		return nil, fmt.Errorf("revision %s: %w", revisionID, sentinel.ErrNotFound)
	}
	return clone(rev), nil
}

func (s *InMemory) FindPending(_ context.Context, entityType models.EntityType, entityID uuid.UUID) (*models.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	revisionID, exists := s.pending[pendingKey{entityType: entityType, entityID: entityID}]
	if !exists {
		return nil, fmt.Errorf("pending revision for %s/%s: %w", entityType, entityID, sentinel.ErrNotFound)
	}
	return clone(s.revisions[revisionID]), nil
}

// clone guards callers against aliasing the stored value.
func clone(rev *models.Revision) *models.Revision {
	out := *rev
	if rev.Reviewed != nil {
		reviewed := *rev.Reviewed
		out.Reviewed = &reviewed
	}
	out.Payload.Data = append([]byte(nil), rev.Payload.Data...)
	if rev.Diff != nil {
		out.Diff = append([]byte(nil), rev.Diff...)
	}
	return &out
}
