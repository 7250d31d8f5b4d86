package rules

import (
	"context"
	"sync"

	"dsarhub/internal/discovery/models"
	"dsarhub/pkg/domain"
	"dsarhub/pkg/platform/sentinel"
)

// InMemoryStore keeps rule catalogues per tenant. Insertion order is
// preserved so discovery output stays stable across runs.
type InMemoryStore struct {
	mu    sync.RWMutex
	rules map[domain.TenantID][]models.DiscoveryRule
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		rules: make(map[domain.TenantID][]models.DiscoveryRule),
	}
}

// List returns the tenant's full rule catalogue, active and inactive.
func (s *InMemoryStore) List(_ context.Context, tenantID domain.TenantID) ([]models.DiscoveryRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DiscoveryRule, len(s.rules[tenantID]))
	copy(out, s.rules[tenantID])
	return out, nil
}

// Upsert inserts the rule or replaces an existing rule with the same ID in place.
func (s *InMemoryStore) Upsert(_ context.Context, tenantID domain.TenantID, rule models.DiscoveryRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.rules[tenantID] {
		if existing.ID == rule.ID {
			s.rules[tenantID][i] = rule
			return nil
		}
	}
	s.rules[tenantID] = append(s.rules[tenantID], rule)
	return nil
}

// Deactivate marks a rule inactive without removing it from the catalogue.
func (s *InMemoryStore) Deactivate(_ context.Context, tenantID domain.TenantID, ruleID domain.RuleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.rules[tenantID] {
		if existing.ID == ruleID {
			s.rules[tenantID][i].Active = false
			return nil
		}
	}
	return sentinel.ErrNotFound
}
