package systems

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"dsarhub/internal/discovery/models"
	"dsarhub/pkg/domain"
	"dsarhub/pkg/platform/sentinel"
)

// PostgresStore persists system catalogues in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE systems (
//	    id                UUID PRIMARY KEY,
//	    tenant_id         UUID NOT NULL,
//	    name              TEXT NOT NULL,
//	    in_scope_for_dsar BOOLEAN NOT NULL DEFAULT TRUE,
//	    confidence_score  INT NOT NULL DEFAULT 0,
//	    identifier_types  TEXT[] NOT NULL DEFAULT '{}',
//	    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX idx_systems_tenant ON systems (tenant_id, created_at);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed system store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// List returns the tenant's full system catalogue in creation order.
func (s *PostgresStore) List(ctx context.Context, tenantID domain.TenantID) ([]models.SystemInfo, error) {
	query := `
		SELECT id, name, in_scope_for_dsar, confidence_score, identifier_types
		FROM systems
		WHERE tenant_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, tenantID.String())
	if err != nil {
		return nil, fmt.Errorf("list systems: %w", err)
	}
	defer rows.Close()

	var out []models.SystemInfo
	for rows.Next() {
		system, err := scanSystem(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, system)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list systems: %w", err)
	}
	return out, nil
}

// Get returns one catalogued system or sentinel.ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, tenantID domain.TenantID, systemID domain.SystemID) (models.SystemInfo, error) {
	query := `
		SELECT id, name, in_scope_for_dsar, confidence_score, identifier_types
		FROM systems
		WHERE tenant_id = $1 AND id = $2
	`
	row := s.db.QueryRowContext(ctx, query, tenantID.String(), systemID.String())
	return scanSystem(row.Scan)
}

// Upsert inserts or replaces a system keyed by ID.
func (s *PostgresStore) Upsert(ctx context.Context, tenantID domain.TenantID, system models.SystemInfo) error {
	identifierTypes := make(pq.StringArray, len(system.IdentifierTypes))
	for i, t := range system.IdentifierTypes {
		identifierTypes[i] = string(t)
	}
	query := `
		INSERT INTO systems
			(id, tenant_id, name, in_scope_for_dsar, confidence_score, identifier_types)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			in_scope_for_dsar = EXCLUDED.in_scope_for_dsar,
			confidence_score = EXCLUDED.confidence_score,
			identifier_types = EXCLUDED.identifier_types,
			updated_at = now()
	`
	_, err := s.db.ExecContext(ctx, query,
		system.ID.String(), tenantID.String(), system.Name,
		system.InScopeForDSAR, system.ConfidenceScore, identifierTypes)
	if err != nil {
		return fmt.Errorf("upsert system: %w", err)
	}
	return nil
}

func scanSystem(scan func(dest ...any) error) (models.SystemInfo, error) {
	var (
		system          models.SystemInfo
		idStr           string
		identifierTypes pq.StringArray
	)
	err := scan(&idStr, &system.Name, &system.InScopeForDSAR,
		&system.ConfidenceScore, &identifierTypes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SystemInfo{}, sentinel.ErrNotFound
		}
		return models.SystemInfo{}, fmt.Errorf("scan system: %w", err)
	}
	if system.ID, err = domain.ParseSystemID(idStr); err != nil {
		return models.SystemInfo{}, fmt.Errorf("scan system: %w", err)
	}
	for _, t := range identifierTypes {
		system.IdentifierTypes = append(system.IdentifierTypes, domain.IdentifierType(t))
	}
	return system, nil
}
