package models

import (
	"dsarhub/pkg/domain"
)

// DiscoveryRule is one row of the matching catalogue: it maps request
// characteristics to a candidate system with a base relevance weight.
type DiscoveryRule struct {
	ID       domain.RuleID   `json:"id"`
	SystemID domain.SystemID `json:"system_id"`
	// DSARTypes the rule applies to.
	DSARTypes []domain.DSARType `json:"dsar_types"`
	// DataSubjectTypes the rule applies to; empty means any.
	DataSubjectTypes []domain.DataSubjectType `json:"data_subject_types,omitempty"`
	// IdentifierTypes the rule is sensitive to, supplementing what the system
	// itself supports.
	IdentifierTypes []domain.IdentifierType `json:"identifier_types,omitempty"`
	// Weight is the base relevance score, 1-100.
	Weight int  `json:"weight"`
	Active bool `json:"active"`
	// Conditions carry provider-specific extra data; the scoring path ignores
	// them, connectors interpret them.
	Conditions map[string]any `json:"conditions,omitempty"`
}

// SystemInfo is a catalogued backend system.
type SystemInfo struct {
	ID   domain.SystemID `json:"id"`
	Name string          `json:"name"`
	// InScopeForDSAR is a governance flag, independent of technical relevance.
	InScopeForDSAR bool `json:"in_scope_for_dsar"`
	// ConfidenceScore is a pre-computed trust/coverage score, 0-100.
	ConfidenceScore int `json:"confidence_score"`
	// IdentifierTypes the system is known to index on.
	IdentifierTypes []domain.IdentifierType `json:"identifier_types,omitempty"`
}

// DiscoveryInput is the request profile the ranker matches rules against.
type DiscoveryInput struct {
	DSARType        domain.DSARType         `json:"dsar_type"`
	DataSubjectType domain.DataSubjectType  `json:"data_subject_type,omitempty"`
	IdentifierTypes []domain.IdentifierType `json:"identifier_types"`
}

// DiscoverySuggestion is one ranked result. Reasons list every contributing
// scoring factor in order, for audit and explainability.
// Invariant: Score is clamped to [0, 100].
type DiscoverySuggestion struct {
	SystemID   domain.SystemID `json:"system_id"`
	SystemName string          `json:"system_name"`
	Score      int             `json:"score"`
	Reasons    []string        `json:"reasons"`
}
