package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"dsarhub/internal/identity/models"
	"dsarhub/pkg/domain"
	"dsarhub/pkg/platform/sentinel"
)

// PostgresStore persists identity graphs as one JSONB document per case. The
// graph is read-modify-written as a unit; the identity service serializes
// concurrent merges for the same case.
//
// Schema:
//
//	CREATE TABLE identity_graphs (
//	    case_id    UUID PRIMARY KEY,
//	    graph      JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed graph store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get returns the case's graph or sentinel.ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, caseID domain.CaseID) (models.IdentityGraph, error) {
	var raw []byte
	query := `SELECT graph FROM identity_graphs WHERE case_id = $1`
	err := s.db.QueryRowContext(ctx, query, caseID.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.IdentityGraph{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.IdentityGraph{}, fmt.Errorf("get identity graph: %w", err)
	}

	var g models.IdentityGraph
	if err := json.Unmarshal(raw, &g); err != nil {
		return models.IdentityGraph{}, fmt.Errorf("decode identity graph: %w", err)
	}
	return g, nil
}

// Save upserts the graph as the case's authoritative copy.
func (s *PostgresStore) Save(ctx context.Context, caseID domain.CaseID, g models.IdentityGraph) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode identity graph: %w", err)
	}
	query := `
		INSERT INTO identity_graphs (case_id, graph)
		VALUES ($1, $2)
		ON CONFLICT (case_id) DO UPDATE SET
			graph = EXCLUDED.graph,
			updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, caseID.String(), raw); err != nil {
		return fmt.Errorf("save identity graph: %w", err)
	}
	return nil
}
