package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"dsarhub/internal/discovery/models"
	"dsarhub/pkg/domain"
	"dsarhub/pkg/platform/sentinel"
)

// PostgresStore persists rule catalogues in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE discovery_rules (
//	    id                 UUID PRIMARY KEY,
//	    tenant_id          UUID NOT NULL,
//	    system_id          UUID NOT NULL,
//	    dsar_types         TEXT[] NOT NULL,
//	    data_subject_types TEXT[] NOT NULL DEFAULT '{}',
//	    identifier_types   TEXT[] NOT NULL DEFAULT '{}',
//	    weight             INT NOT NULL,
//	    active             BOOLEAN NOT NULL DEFAULT TRUE,
//	    conditions         JSONB NOT NULL DEFAULT '{}',
//	    created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX idx_discovery_rules_tenant ON discovery_rules (tenant_id, created_at);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed rule store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// List returns the tenant's full rule catalogue in creation order.
func (s *PostgresStore) List(ctx context.Context, tenantID domain.TenantID) ([]models.DiscoveryRule, error) {
	query := `
		SELECT id, system_id, dsar_types, data_subject_types, identifier_types,
		       weight, active, conditions
		FROM discovery_rules
		WHERE tenant_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, tenantID.String())
	if err != nil {
		return nil, fmt.Errorf("list discovery rules: %w", err)
	}
	defer rows.Close()

	var out []models.DiscoveryRule
	for rows.Next() {
		var (
			rule                                      models.DiscoveryRule
			idStr, systemIDStr                        string
			dsarTypes, subjectTypes, identifierTypes  pq.StringArray
			conditions                                []byte
		)
		if err := rows.Scan(&idStr, &systemIDStr, &dsarTypes, &subjectTypes,
			&identifierTypes, &rule.Weight, &rule.Active, &conditions); err != nil {
			return nil, fmt.Errorf("scan discovery rule: %w", err)
		}
		if rule.ID, err = domain.ParseRuleID(idStr); err != nil {
			return nil, fmt.Errorf("scan discovery rule: %w", err)
		}
		if rule.SystemID, err = domain.ParseSystemID(systemIDStr); err != nil {
			return nil, fmt.Errorf("scan discovery rule: %w", err)
		}
		for _, t := range dsarTypes {
			rule.DSARTypes = append(rule.DSARTypes, domain.DSARType(t))
		}
		for _, t := range subjectTypes {
			rule.DataSubjectTypes = append(rule.DataSubjectTypes, domain.DataSubjectType(t))
		}
		for _, t := range identifierTypes {
			rule.IdentifierTypes = append(rule.IdentifierTypes, domain.IdentifierType(t))
		}
		if len(conditions) > 0 {
			if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
				return nil, fmt.Errorf("decode rule conditions: %w", err)
			}
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list discovery rules: %w", err)
	}
	return out, nil
}

// Upsert inserts or replaces a rule keyed by ID.
func (s *PostgresStore) Upsert(ctx context.Context, tenantID domain.TenantID, rule models.DiscoveryRule) error {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("encode rule conditions: %w", err)
	}
	query := `
		INSERT INTO discovery_rules
			(id, tenant_id, system_id, dsar_types, data_subject_types,
			 identifier_types, weight, active, conditions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			system_id = EXCLUDED.system_id,
			dsar_types = EXCLUDED.dsar_types,
			data_subject_types = EXCLUDED.data_subject_types,
			identifier_types = EXCLUDED.identifier_types,
			weight = EXCLUDED.weight,
			active = EXCLUDED.active,
			conditions = EXCLUDED.conditions,
			updated_at = now()
	`
	_, err = s.db.ExecContext(ctx, query,
		rule.ID.String(), tenantID.String(), rule.SystemID.String(),
		stringArray(rule.DSARTypes), stringArray(rule.DataSubjectTypes),
		stringArray(rule.IdentifierTypes), rule.Weight, rule.Active, conditions)
	if err != nil {
		return fmt.Errorf("upsert discovery rule: %w", err)
	}
	return nil
}

// Deactivate marks a rule inactive without removing it from the catalogue.
func (s *PostgresStore) Deactivate(ctx context.Context, tenantID domain.TenantID, ruleID domain.RuleID) error {
	query := `
		UPDATE discovery_rules
		SET active = FALSE, updated_at = now()
		WHERE tenant_id = $1 AND id = $2
	`
	res, err := s.db.ExecContext(ctx, query, tenantID.String(), ruleID.String())
	if err != nil {
		return fmt.Errorf("deactivate discovery rule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate discovery rule: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func stringArray[T ~string](values []T) pq.StringArray {
	out := make(pq.StringArray, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
