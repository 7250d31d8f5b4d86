// Package resolver builds and incrementally merges the probabilistic identity
// profile of a data subject. Every operation takes its inputs by value and
// returns a new graph; nothing here performs I/O or mutates shared state, so
// calls are safe from concurrent goroutines. Serializing read-merge-write
// against the stored copy of a case's graph is the caller's job.
package resolver

import (
	"sort"
	"strings"

	"dsarhub/internal/identity/models"
	"dsarhub/pkg/domain"
)

// SourceCaseData is the provenance label for identifiers taken directly from
// the case's subject record.
const SourceCaseData = "case_data"

// MinConfidence is the floor below which a merged identifier is discarded
// outright and below which an identifier is not offered as a query alternative.
const MinConfidence = 0.1

const (
	// corroborationBonus is added when an independent source re-confirms a
	// known fact at meaningful confidence.
	corroborationBonus = 0.05
	// corroborationThreshold is the minimum incoming confidence for the
	// cross-source bonus to apply.
	corroborationThreshold = 0.5
	// systemCorroborationCap bounds the aggregate bonus from resolved systems.
	systemCorroborationCap = 0.15
)

// typeWeights drive the aggregate confidence formula. Identifier types that
// uniquely pin down a person weigh more than ambiguous ones.
var typeWeights = map[domain.IdentifierType]float64{
	domain.IdentifierEmail:      1.0,
	domain.IdentifierUPN:        1.0,
	domain.IdentifierObjectID:   0.9,
	domain.IdentifierEmployeeID: 0.85,
	domain.IdentifierPhone:      0.7,
	domain.IdentifierName:       0.5,
	domain.IdentifierCustom:     0.4,
}

const defaultTypeWeight = 0.4

// typePriority orders identifier types for query-spec selection. Lower ranks
// first; types outside the table rank last.
var typePriority = map[domain.IdentifierType]int{
	domain.IdentifierEmail:      0,
	domain.IdentifierUPN:        1,
	domain.IdentifierObjectID:   2,
	domain.IdentifierEmployeeID: 3,
	domain.IdentifierPhone:      4,
	domain.IdentifierName:       5,
	domain.IdentifierCustom:     6,
}

// extraKeyTypes maps known spellings of extra-identifier map keys to identifier
// types. Lookup is over the lowercased, trimmed key; unknown keys degrade to
// custom rather than being rejected.
var extraKeyTypes = map[string]domain.IdentifierType{
	"upn":                 domain.IdentifierUPN,
	"userprincipalname":   domain.IdentifierUPN,
	"user_principal_name": domain.IdentifierUPN,
	"objectid":            domain.IdentifierObjectID,
	"object_id":           domain.IdentifierObjectID,
	"aad_object_id":       domain.IdentifierObjectID,
	"directory_object_id": domain.IdentifierObjectID,
	"employeeid":          domain.IdentifierEmployeeID,
	"employee_id":         domain.IdentifierEmployeeID,
	"employee_number":     domain.IdentifierEmployeeID,
	"staff_id":            domain.IdentifierEmployeeID,
	"mail":                domain.IdentifierEmail,
	"alternate_email":     domain.IdentifierEmail,
	"secondary_email":     domain.IdentifierEmail,
	"alternate_phone":     domain.IdentifierPhone,
	"secondary_phone":     domain.IdentifierPhone,
	"mobile":              domain.IdentifierPhone,
}

// BuildInitialGraph constructs a fresh identity graph from the case's subject
// record. All case-provided facts carry full confidence; no systems are
// resolved yet.
func BuildInitialGraph(subject models.SubjectRecord) models.IdentityGraph {
	var identifiers []models.IdentityEntry
	seen := make(map[string]struct{})

	add := func(t domain.IdentifierType, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		entry := models.IdentityEntry{
			Type:       t,
			Value:      value,
			Source:     SourceCaseData,
			Confidence: 1.0,
		}
		if _, dup := seen[entry.Key()]; dup {
			return
		}
		seen[entry.Key()] = struct{}{}
		identifiers = append(identifiers, entry)
	}

	add(domain.IdentifierName, subject.FullName)
	add(domain.IdentifierEmail, subject.Email)
	add(domain.IdentifierPhone, subject.Phone)

	// Walk the open-ended extra-identifier map in sorted key order so graphs
	// built from the same record are identical.
	keys := make([]string, 0, len(subject.Identifiers))
	for k := range subject.Identifiers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(extraKeyType(k), subject.Identifiers[k])
	}

	graph := models.IdentityGraph{
		PrimaryEmail: strings.TrimSpace(subject.Email),
		PrimaryName:  strings.TrimSpace(subject.FullName),
		Identifiers:  identifiers,
	}
	graph.Confidence = aggregateConfidence(graph.Identifiers, len(graph.ResolvedSystems))
	return graph
}

func extraKeyType(key string) domain.IdentifierType {
	if t, ok := extraKeyTypes[strings.ToLower(strings.TrimSpace(key))]; ok {
		return t
	}
	return domain.IdentifierCustom
}

// MergeIdentifiers folds a batch of connector-discovered facts into the graph
// and returns the merged result; the input graph is left unmodified.
//
// Entries without a source are stamped with defaultSource. Entries below
// MinConfidence (after clamping) never enter the graph. When an entry matches
// an existing fact by normalized (type, value), confidences combine by max,
// with a cross-source corroboration bonus when an independent source confirms
// the fact at confidence >= 0.5; attribution moves to the new source only when
// it is the more confident one.
func MergeIdentifiers(graph models.IdentityGraph, entries []models.IdentityEntry, defaultSource string) models.IdentityGraph {
	out := graph.Clone()

	index := make(map[string]int, len(out.Identifiers))
	for i, e := range out.Identifiers {
		index[e.Key()] = i
	}

	for _, entry := range entries {
		if entry.Source == "" {
			entry.Source = defaultSource
		}
		entry.Confidence = clamp01(entry.Confidence)
		if entry.Confidence < MinConfidence {
			continue
		}

		i, exists := index[entry.Key()]
		if !exists {
			index[entry.Key()] = len(out.Identifiers)
			out.Identifiers = append(out.Identifiers, entry)
			continue
		}

		existing := out.Identifiers[i]
		merged := existing.Confidence
		if entry.Confidence > merged {
			merged = entry.Confidence
		}
		if existing.Source != entry.Source && entry.Confidence >= corroborationThreshold {
			merged = clamp01(merged + corroborationBonus)
		}
		// The more confident source wins attribution.
		if entry.Confidence > existing.Confidence {
			existing.Source = entry.Source
		}
		existing.Confidence = merged
		out.Identifiers[i] = existing
	}

	if out.PrimaryEmail == "" {
		if best, ok := bestOfType(out.Identifiers, domain.IdentifierEmail); ok {
			out.PrimaryEmail = best.Value
		}
	}
	if out.PrimaryName == "" {
		if best, ok := bestOfType(out.Identifiers, domain.IdentifierName); ok {
			out.PrimaryName = best.Value
		}
	}

	out.Confidence = aggregateConfidence(out.Identifiers, len(out.ResolvedSystems))
	return out
}

func bestOfType(identifiers []models.IdentityEntry, t domain.IdentifierType) (models.IdentityEntry, bool) {
	var best models.IdentityEntry
	found := false
	for _, e := range identifiers {
		if e.Type != t {
			continue
		}
		if !found || e.Confidence > best.Confidence {
			best = e
			found = true
		}
	}
	return best, found
}

// AddResolvedSystem records an account sighting in a target system. A repeat
// sighting of the same (provider, accountId) refreshes display name and last
// seen time without erasing previously known values with blanks.
func AddResolvedSystem(graph models.IdentityGraph, system models.ResolvedSystem) models.IdentityGraph {
	out := graph.Clone()

	updated := false
	for i, existing := range out.ResolvedSystems {
		if existing.Key() != system.Key() {
			continue
		}
		if system.DisplayName != "" {
			existing.DisplayName = system.DisplayName
		}
		if system.LastSeen != nil {
			ts := *system.LastSeen
			existing.LastSeen = &ts
		}
		out.ResolvedSystems[i] = existing
		updated = true
		break
	}
	if !updated {
		out.ResolvedSystems = append(out.ResolvedSystems, system)
	}

	// System count feeds the corroboration term, so recompute even though the
	// identifier set did not change.
	out.Confidence = aggregateConfidence(out.Identifiers, len(out.ResolvedSystems))
	return out
}

// aggregateConfidence is the weighted mean of identifier confidences plus a
// capped bonus for each resolved system beyond the first. A graph with no
// identifiers has zero confidence regardless of resolved systems.
func aggregateConfidence(identifiers []models.IdentityEntry, systemCount int) float64 {
	if len(identifiers) == 0 {
		return 0
	}

	var weightedSum, weightSum float64
	for _, e := range identifiers {
		w, ok := typeWeights[e.Type]
		if !ok {
			w = defaultTypeWeight
		}
		weightedSum += e.Confidence * w
		weightSum += w
	}
	base := weightedSum / weightSum

	corroboration := float64(systemCount-1) * corroborationBonus
	if corroboration < 0 {
		corroboration = 0
	}
	if corroboration > systemCorroborationCap {
		corroboration = systemCorroborationCap
	}

	return clamp01(base + corroboration)
}

// BuildSubjectIdentifiers derives the query specification handed to connector
// dispatch. Type priority dominates raw confidence when choosing the primary;
// alternatives are everything else above MinConfidence, ordered by confidence
// alone.
func BuildSubjectIdentifiers(graph models.IdentityGraph) models.SubjectIdentifiers {
	if len(graph.Identifiers) == 0 {
		// Insufficient data to query; callers check for the empty value.
		return models.SubjectIdentifiers{
			Primary:      models.SubjectIdentifier{Type: domain.IdentifierEmail, Value: ""},
			Alternatives: []models.SubjectIdentifier{},
		}
	}

	ranked := make([]models.IdentityEntry, len(graph.Identifiers))
	copy(ranked, graph.Identifiers)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := priorityOf(ranked[i].Type), priorityOf(ranked[j].Type)
		if pi != pj {
			return pi < pj
		}
		return ranked[i].Confidence > ranked[j].Confidence
	})

	primary := models.SubjectIdentifier{Type: ranked[0].Type, Value: ranked[0].Value}

	rest := make([]models.IdentityEntry, 0, len(ranked)-1)
	for _, e := range ranked[1:] {
		if e.Confidence >= MinConfidence {
			rest = append(rest, e)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].Confidence > rest[j].Confidence
	})

	alternatives := make([]models.SubjectIdentifier, 0, len(rest))
	for _, e := range rest {
		alternatives = append(alternatives, models.SubjectIdentifier{Type: e.Type, Value: e.Value})
	}

	return models.SubjectIdentifiers{Primary: primary, Alternatives: alternatives}
}

func priorityOf(t domain.IdentifierType) int {
	if p, ok := typePriority[t]; ok {
		return p
	}
	return len(typePriority)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
