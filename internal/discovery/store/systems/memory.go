package systems

import (
	"context"
	"sync"

	"dsarhub/internal/discovery/models"
	"dsarhub/pkg/domain"
	"dsarhub/pkg/platform/sentinel"
)

// InMemoryStore keeps system catalogues per tenant.
type InMemoryStore struct {
	mu      sync.RWMutex
	systems map[domain.TenantID][]models.SystemInfo
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		systems: make(map[domain.TenantID][]models.SystemInfo),
	}
}

// List returns the tenant's full system catalogue.
func (s *InMemoryStore) List(_ context.Context, tenantID domain.TenantID) ([]models.SystemInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SystemInfo, len(s.systems[tenantID]))
	copy(out, s.systems[tenantID])
	return out, nil
}

// Get returns one catalogued system or sentinel.ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context, tenantID domain.TenantID, systemID domain.SystemID) (models.SystemInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sys := range s.systems[tenantID] {
		if sys.ID == systemID {
			return sys, nil
		}
	}
	return models.SystemInfo{}, sentinel.ErrNotFound
}

// Upsert inserts the system or replaces an existing one with the same ID in place.
func (s *InMemoryStore) Upsert(_ context.Context, tenantID domain.TenantID, system models.SystemInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.systems[tenantID] {
		if existing.ID == system.ID {
			s.systems[tenantID][i] = system
			return nil
		}
	}
	s.systems[tenantID] = append(s.systems[tenantID], system)
	return nil
}
