// Package store provides distillery persistence. The in-memory
// implementation enforces per-company name uniqueness, matching the
// behavior a distilleries table index would provide.
package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"dramcask/internal/spirits/distillery/models"
	"dramcask/pkg/platform/sentinel"
)

type nameKey struct {
	companyID uuid.UUID
	name      string
}

// InMemory is a map-backed distillery store.
type InMemory struct {
	mu           sync.RWMutex
	distilleries map[uuid.UUID]*models.Distillery
	byName       map[nameKey]uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{
		distilleries: make(map[uuid.UUID]*models.Distillery),
		byName:       make(map[nameKey]uuid.UUID),
	}
}

func (s *InMemory) Create(_ context.Context, distillery *models.Distillery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyOf(distillery)
	if _, exists := s.byName[key]; exists {
		return sentinel.ErrDuplicateKey
	}
	if _, exists := s.distilleries[uuid.UUID(distillery.ID)]; exists {
		return sentinel.ErrDuplicateKey
	}

	s.distilleries[uuid.UUID(distillery.ID)] = distillery.Clone()
	s.byName[key] = uuid.UUID(distillery.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, distilleryID uuid.UUID) (*models.Distillery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	distillery, ok := s.distilleries[distilleryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return distillery.Clone(), nil
}

func (s *InMemory) Update(_ context.Context, distillery *models.Distillery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.distilleries[uuid.UUID(distillery.ID)]
	if !ok {
		return sentinel.ErrNotFound
	}

	newKey := keyOf(distillery)
	if newKey != keyOf(current) {
		if _, taken := s.byName[newKey]; taken {
			return sentinel.ErrDuplicateKey
		}
		delete(s.byName, keyOf(current))
		s.byName[newKey] = uuid.UUID(distillery.ID)
	}

	s.distilleries[uuid.UUID(distillery.ID)] = distillery.Clone()
	return nil
}

func keyOf(d *models.Distillery) nameKey {
	return nameKey{
		companyID: uuid.UUID(d.CompanyID),
		name:      strings.ToLower(strings.TrimSpace(d.Name)),
	}
}
