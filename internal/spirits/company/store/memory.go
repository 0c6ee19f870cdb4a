// Package store provides company persistence: an in-memory implementation
// for tests and a Postgres implementation for production.
package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"dramcask/internal/spirits/company/models"
	"dramcask/pkg/platform/sentinel"
)

// InMemory is a map-backed company store. Name uniqueness is enforced
// case-insensitively, matching the Postgres lower(name) unique index.
type InMemory struct {
	mu        sync.RWMutex
	companies map[uuid.UUID]*models.Company
	byName    map[string]uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{
		companies: make(map[uuid.UUID]*models.Company),
		byName:    make(map[string]uuid.UUID),
	}
}

func (s *InMemory) Create(_ context.Context, company *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := nameKey(company.Name)
	if _, exists := s.byName[key]; exists {
		return sentinel.ErrDuplicateKey
	}
	if _, exists := s.companies[uuid.UUID(company.ID)]; exists {
		return sentinel.ErrDuplicateKey
	}

	s.companies[uuid.UUID(company.ID)] = company.Clone()
	s.byName[key] = uuid.UUID(company.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, companyID uuid.UUID) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	company, ok := s.companies[companyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return company.Clone(), nil
}

func (s *InMemory) FindByName(_ context.Context, name string) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	companyID, ok := s.byName[nameKey(name)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.companies[companyID].Clone(), nil
}

func (s *InMemory) Update(_ context.Context, company *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.companies[uuid.UUID(company.ID)]
	if !ok {
		return sentinel.ErrNotFound
	}

	newKey := nameKey(company.Name)
	if newKey != nameKey(current.Name) {
		if _, taken := s.byName[newKey]; taken {
			return sentinel.ErrDuplicateKey
		}
		delete(s.byName, nameKey(current.Name))
		s.byName[newKey] = uuid.UUID(company.ID)
	}

	s.companies[uuid.UUID(company.ID)] = company.Clone()
	return nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
