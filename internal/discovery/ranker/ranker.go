// Package ranker scores catalogued systems against a request profile. It is a
// pure transformation: rules and systems go in, an explained ranking comes
// out, and nothing is mutated or fetched along the way.
package ranker

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"dsarhub/internal/discovery/models"
	"dsarhub/pkg/domain"
)

const (
	// identifierBoost is added per matching identifier type.
	identifierBoost = 15
	// identifierBoostCap bounds the total identifier contribution per rule.
	identifierBoostCap = 30
	// outOfScopePenalty applies to systems flagged out of governance scope.
	// Note: the penalty is additive against an unclamped intermediate score, so
	// a heavily boosted rule can keep an out-of-scope system above zero. Known
	// scoring quirk, kept as-is.
	outOfScopePenalty = 100
	maxScore          = 100
)

type candidate struct {
	system  models.SystemInfo
	score   int
	reasons []string
}

// Run evaluates every rule against the request profile and returns one
// suggestion per system, scored by its best-matching rule (rules for the same
// system compete, they never sum), sorted by score descending. Systems whose
// retained score is zero or below are dropped. Ties keep rule processing
// order.
func Run(input models.DiscoveryInput, rules []models.DiscoveryRule, systems map[domain.SystemID]models.SystemInfo) []models.DiscoverySuggestion {
	best := make(map[domain.SystemID]candidate)
	var order []domain.SystemID

	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if !containsDSARType(rule.DSARTypes, input.DSARType) {
			continue
		}
		if len(rule.DataSubjectTypes) > 0 && input.DataSubjectType != "" &&
			!containsSubjectType(rule.DataSubjectTypes, input.DataSubjectType) {
			continue
		}
		system, ok := systems[rule.SystemID]
		if !ok {
			continue
		}

		score := rule.Weight
		reasons := []string{
			fmt.Sprintf("rule %s matches %s requests (base weight %d)",
				rule.ID, input.DSARType, rule.Weight),
		}

		if boost, matched := identifierMatchBoost(input.IdentifierTypes, system.IdentifierTypes, rule.IdentifierTypes); boost > 0 {
			score += boost
			reasons = append(reasons, fmt.Sprintf("identifier types %s are searchable (+%d)",
				strings.Join(matched, ", "), boost))
		}

		if confBoost := int(math.Round(float64(system.ConfidenceScore) / 10)); confBoost != 0 {
			score += confBoost
			reasons = append(reasons, fmt.Sprintf("system confidence %d/100 (+%d)",
				system.ConfidenceScore, confBoost))
		}

		if !system.InScopeForDSAR {
			score -= outOfScopePenalty
			reasons = append(reasons, fmt.Sprintf("system %s is out of scope for DSAR processing (-%d)",
				system.Name, outOfScopePenalty))
		}

		if score < 0 {
			score = 0
		}
		if score > maxScore {
			score = maxScore
		}

		existing, seen := best[rule.SystemID]
		if !seen {
			order = append(order, rule.SystemID)
		}
		if !seen || score > existing.score {
			best[rule.SystemID] = candidate{system: system, score: score, reasons: reasons}
		}
	}

	suggestions := make([]models.DiscoverySuggestion, 0, len(order))
	for _, systemID := range order {
		c := best[systemID]
		if c.score <= 0 {
			continue
		}
		suggestions = append(suggestions, models.DiscoverySuggestion{
			SystemID:   systemID,
			SystemName: c.system.Name,
			Score:      c.score,
			Reasons:    c.reasons,
		})
	}

	// Stable sort by score only; equal scores retain processing order.
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})

	return suggestions
}

// identifierMatchBoost adds identifierBoost for each requested identifier type
// the system indexes on or the rule is sensitive to, capped at
// identifierBoostCap. Returns the boost and the matched type names.
func identifierMatchBoost(requested, systemTypes, ruleTypes []domain.IdentifierType) (int, []string) {
	boost := 0
	var matched []string
	for _, t := range requested {
		if containsIdentifierType(systemTypes, t) || containsIdentifierType(ruleTypes, t) {
			boost += identifierBoost
			matched = append(matched, t.String())
		}
	}
	if boost > identifierBoostCap {
		boost = identifierBoostCap
	}
	return boost, matched
}

func containsDSARType(haystack []domain.DSARType, needle domain.DSARType) bool {
	for _, t := range haystack {
		if t == needle {
			return true
		}
	}
	return false
}

func containsSubjectType(haystack []domain.DataSubjectType, needle domain.DataSubjectType) bool {
	for _, t := range haystack {
		if t == needle {
			return true
		}
	}
	return false
}

func containsIdentifierType(haystack []domain.IdentifierType, needle domain.IdentifierType) bool {
	for _, t := range haystack {
		if t == needle {
			return true
		}
	}
	return false
}
