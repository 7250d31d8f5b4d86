package graph

import (
	"context"
	"sync"

	"dsarhub/internal/identity/models"
	"dsarhub/pkg/domain"
	"dsarhub/pkg/platform/sentinel"
)

// InMemoryStore holds the authoritative graph per case. Clone on both sides of
// the boundary so callers can never alias the stored copy.
type InMemoryStore struct {
	mu     sync.RWMutex
	graphs map[domain.CaseID]models.IdentityGraph
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		graphs: make(map[domain.CaseID]models.IdentityGraph),
	}
}

// Get returns the case's graph or sentinel.ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context, caseID domain.CaseID) (models.IdentityGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.graphs[caseID]
	if !ok {
		return models.IdentityGraph{}, sentinel.ErrNotFound
	}
	return g.Clone(), nil
}

// Save stores the graph as the case's authoritative copy.
func (s *InMemoryStore) Save(_ context.Context, caseID domain.CaseID, g models.IdentityGraph) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graphs[caseID] = g.Clone()
	return nil
}
