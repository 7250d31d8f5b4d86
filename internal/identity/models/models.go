package models

import (
	"strings"
	"time"

	"dsarhub/pkg/domain"
)

// IdentityEntry is one known fact about the data subject.
// Invariant: Confidence is always within [0.0, 1.0] for entries inside a graph.
type IdentityEntry struct {
	Type       domain.IdentifierType `json:"type"`
	Value      string                `json:"value"`
	Source     string                `json:"source"`
	Confidence float64               `json:"confidence"`
}

// Key returns the normalized dedup key for the entry. Values compare
// case-insensitively and trimmed; no two entries in a graph share a key.
func (e IdentityEntry) Key() string {
	return string(e.Type) + "|" + strings.ToLower(strings.TrimSpace(e.Value))
}

// ResolvedSystem is an account located in a target system by a connector.
type ResolvedSystem struct {
	Provider    string     `json:"provider"`
	AccountID   string     `json:"account_id"`
	DisplayName string     `json:"display_name,omitempty"`
	LastSeen    *time.Time `json:"last_seen,omitempty"`
}

// Key returns the normalized dedup key for the system sighting.
func (r ResolvedSystem) Key() string {
	return strings.ToLower(strings.TrimSpace(r.Provider)) + "|" +
		strings.ToLower(strings.TrimSpace(r.AccountID))
}

// IdentityGraph is the accumulated identity profile of one data subject.
//
// PrimaryEmail and PrimaryName are derived caches, never authoritative; they
// can always be re-derived from Identifiers. Confidence is a derived aggregate
// recomputed on every mutation.
type IdentityGraph struct {
	PrimaryEmail    string           `json:"primary_email,omitempty"`
	PrimaryName     string           `json:"primary_name,omitempty"`
	Identifiers     []IdentityEntry  `json:"identifiers"`
	ResolvedSystems []ResolvedSystem `json:"resolved_systems"`
	Confidence      float64          `json:"confidence"`
}

// Clone returns a deep copy so callers can hand out graphs without aliasing
// the backing slices. Resolver operations build on this to stay not-in-place.
func (g IdentityGraph) Clone() IdentityGraph {
	out := g
	out.Identifiers = make([]IdentityEntry, len(g.Identifiers))
	copy(out.Identifiers, g.Identifiers)
	out.ResolvedSystems = make([]ResolvedSystem, len(g.ResolvedSystems))
	for i, rs := range g.ResolvedSystems {
		if rs.LastSeen != nil {
			ts := *rs.LastSeen
			rs.LastSeen = &ts
		}
		out.ResolvedSystems[i] = rs
	}
	return out
}

// SubjectRecord is the case-intake view of the data subject. Identifiers is an
// open-ended map of extra identifiers (arbitrary keys, e.g. from an HRIS or
// directory export); unrecognized keys degrade to custom-typed entries.
type SubjectRecord struct {
	FullName    string            `json:"full_name"`
	Email       string            `json:"email,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Address     string            `json:"address,omitempty"`
	Identifiers map[string]string `json:"identifiers,omitempty"`
}

// SubjectIdentifier is a single type+value pair used to query a target system.
type SubjectIdentifier struct {
	Type  domain.IdentifierType `json:"type"`
	Value string                `json:"value"`
}

// SubjectIdentifiers is the query specification handed to connector dispatch.
// An empty Primary.Value means the graph held insufficient data to query; it
// is not an error.
type SubjectIdentifiers struct {
	Primary      SubjectIdentifier   `json:"primary"`
	Alternatives []SubjectIdentifier `json:"alternatives"`
}
