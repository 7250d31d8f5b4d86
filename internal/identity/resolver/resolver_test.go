package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"dsarhub/internal/identity/models"
	"dsarhub/pkg/domain"
)

// ResolverSuite exercises the pure identity-graph operations. Justification for
// unit tests: the resolver holds the only real algorithmic content in the
// subsystem (weighted aggregation, dedup under normalization, corroboration),
// which HTTP-level tests cannot pin down precisely.
type ResolverSuite struct {
	suite.Suite
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func janeGraph() models.IdentityGraph {
	return BuildInitialGraph(models.SubjectRecord{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
	})
}

// =============================================================================
// BuildInitialGraph Tests
// =============================================================================

func (s *ResolverSuite) TestBuildInitialGraph() {
	s.Run("name and email produce full-confidence graph", func() {
		g := janeGraph()

		s.Require().Len(g.Identifiers, 2)
		s.Equal(domain.IdentifierName, g.Identifiers[0].Type)
		s.Equal("Jane Doe", g.Identifiers[0].Value)
		s.Equal(domain.IdentifierEmail, g.Identifiers[1].Type)
		s.Equal("jane@example.com", g.Identifiers[1].Value)
		for _, e := range g.Identifiers {
			s.Equal(SourceCaseData, e.Source)
			s.InDelta(1.0, e.Confidence, 1e-9)
		}
		s.InDelta(1.0, g.Confidence, 1e-9)
		s.Empty(g.ResolvedSystems)
		s.Equal("jane@example.com", g.PrimaryEmail)
		s.Equal("Jane Doe", g.PrimaryName)
	})

	s.Run("known extra keys map to typed identifiers", func() {
		g := BuildInitialGraph(models.SubjectRecord{
			FullName: "Jane Doe",
			Identifiers: map[string]string{
				"userPrincipalName": "jdoe@corp.example.com",
				"employee_id":       "E-1024",
				"badge_color":       "blue",
			},
		})

		byType := map[domain.IdentifierType]string{}
		for _, e := range g.Identifiers {
			byType[e.Type] = e.Value
		}
		s.Equal("jdoe@corp.example.com", byType[domain.IdentifierUPN])
		s.Equal("E-1024", byType[domain.IdentifierEmployeeID])
		s.Equal("blue", byType[domain.IdentifierCustom], "unrecognized key degrades to custom")
	})

	s.Run("blank and duplicate extras are dropped", func() {
		g := BuildInitialGraph(models.SubjectRecord{
			FullName: "Jane Doe",
			Email:    "jane@example.com",
			Identifiers: map[string]string{
				"alternate_email": "JANE@example.com ",
				"mobile":          "   ",
			},
		})

		s.Len(g.Identifiers, 2, "alternate_email duplicates the case email, mobile is blank")
	})

	s.Run("empty subject yields zero-confidence graph", func() {
		g := BuildInitialGraph(models.SubjectRecord{})

		s.Empty(g.Identifiers)
		s.Zero(g.Confidence)
	})
}

// =============================================================================
// MergeIdentifiers Tests
// =============================================================================

func (s *ResolverSuite) TestMergeIdentifiers() {
	s.Run("case-insensitive merge keeps one entry and original source", func() {
		g := janeGraph()

		merged := MergeIdentifiers(g, []models.IdentityEntry{
			{Type: domain.IdentifierEmail, Value: "JANE@EXAMPLE.COM", Source: "M365", Confidence: 0.8},
		}, "M365")

		s.Len(merged.Identifiers, 2, "no second email entry")
		email, ok := bestOfType(merged.Identifiers, domain.IdentifierEmail)
		s.Require().True(ok)
		s.Equal(SourceCaseData, email.Source, "lower-confidence source does not win attribution")
		s.InDelta(1.0, email.Confidence, 1e-9)
		s.InDelta(1.0, merged.Confidence, 1e-9)
	})

	s.Run("below-threshold entries never enter the graph", func() {
		g := janeGraph()

		merged := MergeIdentifiers(g, []models.IdentityEntry{
			{Type: domain.IdentifierPhone, Value: "+4512345678", Confidence: 0.05},
		}, "hris")

		s.Len(merged.Identifiers, len(g.Identifiers))
	})

	s.Run("missing source is stamped with the default", func() {
		g := janeGraph()

		merged := MergeIdentifiers(g, []models.IdentityEntry{
			{Type: domain.IdentifierObjectID, Value: "c0ffee", Confidence: 0.9},
		}, "entra")

		obj, ok := bestOfType(merged.Identifiers, domain.IdentifierObjectID)
		s.Require().True(ok)
		s.Equal("entra", obj.Source)
	})

	s.Run("more confident source takes over attribution", func() {
		g := MergeIdentifiers(models.IdentityGraph{}, []models.IdentityEntry{
			{Type: domain.IdentifierPhone, Value: "+4512345678", Source: "hris", Confidence: 0.6},
		}, "hris")

		merged := MergeIdentifiers(g, []models.IdentityEntry{
			{Type: domain.IdentifierPhone, Value: "+4512345678", Source: "crm", Confidence: 0.9},
		}, "crm")

		s.Require().Len(merged.Identifiers, 1)
		s.Equal("crm", merged.Identifiers[0].Source)
		// max(0.6, 0.9) plus the cross-source bonus
		s.InDelta(0.95, merged.Identifiers[0].Confidence, 1e-9)
	})

	s.Run("corroboration never pushes confidence past one", func() {
		g := models.IdentityGraph{}
		sources := []string{"s1", "s2", "s3", "s4", "s5"}
		for _, src := range sources {
			g = MergeIdentifiers(g, []models.IdentityEntry{
				{Type: domain.IdentifierEmail, Value: "jane@example.com", Source: src, Confidence: 0.9},
			}, src)
		}

		s.Len(g.Identifiers, 1)
		s.LessOrEqual(g.Identifiers[0].Confidence, 1.0)
		s.LessOrEqual(g.Confidence, 1.0)
	})

	s.Run("primary email is promoted when previously unset", func() {
		g := BuildInitialGraph(models.SubjectRecord{FullName: "Jane Doe"})
		s.Empty(g.PrimaryEmail)

		merged := MergeIdentifiers(g, []models.IdentityEntry{
			{Type: domain.IdentifierEmail, Value: "weak@example.com", Source: "crm", Confidence: 0.4},
			{Type: domain.IdentifierEmail, Value: "strong@example.com", Source: "m365", Confidence: 0.9},
		}, "crm")

		s.Equal("strong@example.com", merged.PrimaryEmail)
	})

	s.Run("input graph is never mutated", func() {
		g := janeGraph()
		before := len(g.Identifiers)

		_ = MergeIdentifiers(g, []models.IdentityEntry{
			{Type: domain.IdentifierPhone, Value: "+4512345678", Confidence: 0.9},
		}, "hris")

		s.Len(g.Identifiers, before)
		s.InDelta(1.0, g.Confidence, 1e-9)
	})

	s.Run("entry confidence is clamped into range", func() {
		merged := MergeIdentifiers(models.IdentityGraph{}, []models.IdentityEntry{
			{Type: domain.IdentifierEmail, Value: "jane@example.com", Source: "crm", Confidence: 7.5},
		}, "crm")

		s.Require().Len(merged.Identifiers, 1)
		s.InDelta(1.0, merged.Identifiers[0].Confidence, 1e-9)
	})
}

// =============================================================================
// AddResolvedSystem Tests
// =============================================================================

func (s *ResolverSuite) TestAddResolvedSystem() {
	s.Run("same provider and account dedupes to one sighting", func() {
		g := janeGraph()
		g = AddResolvedSystem(g, models.ResolvedSystem{
			Provider: "m365", AccountID: "abc", DisplayName: "Jane (work)",
		})
		g = AddResolvedSystem(g, models.ResolvedSystem{
			Provider: "M365", AccountID: "ABC", DisplayName: "Jane Doe",
		})

		s.Require().Len(g.ResolvedSystems, 1)
		s.Equal("Jane Doe", g.ResolvedSystems[0].DisplayName, "refresh takes the newer display name")
	})

	s.Run("refresh with blanks keeps known values", func() {
		seen := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		g := AddResolvedSystem(janeGraph(), models.ResolvedSystem{
			Provider: "sf", AccountID: "42", DisplayName: "Jane", LastSeen: &seen,
		})
		g = AddResolvedSystem(g, models.ResolvedSystem{Provider: "sf", AccountID: "42"})

		s.Require().Len(g.ResolvedSystems, 1)
		s.Equal("Jane", g.ResolvedSystems[0].DisplayName)
		s.Require().NotNil(g.ResolvedSystems[0].LastSeen)
		s.True(seen.Equal(*g.ResolvedSystems[0].LastSeen))
	})

	s.Run("each system past the first raises graph confidence, capped", func() {
		g := MergeIdentifiers(models.IdentityGraph{}, []models.IdentityEntry{
			{Type: domain.IdentifierEmail, Value: "jane@example.com", Source: "crm", Confidence: 0.5},
		}, "crm")
		base := g.Confidence

		g = AddResolvedSystem(g, models.ResolvedSystem{Provider: "a", AccountID: "1"})
		s.InDelta(base, g.Confidence, 1e-9, "first system adds no bonus")

		for _, p := range []string{"b", "c", "d", "e"} {
			g = AddResolvedSystem(g, models.ResolvedSystem{Provider: p, AccountID: "1"})
		}
		s.InDelta(base+0.15, g.Confidence, 1e-9, "bonus caps at +0.15")
	})
}

// =============================================================================
// BuildSubjectIdentifiers Tests
// =============================================================================

func (s *ResolverSuite) TestBuildSubjectIdentifiers() {
	s.Run("type priority dominates raw confidence", func() {
		g := MergeIdentifiers(models.IdentityGraph{}, []models.IdentityEntry{
			{Type: domain.IdentifierPhone, Value: "+4512345678", Source: "crm", Confidence: 0.9},
			{Type: domain.IdentifierEmail, Value: "jane@example.com", Source: "crm", Confidence: 0.6},
		}, "crm")

		spec := BuildSubjectIdentifiers(g)

		s.Equal(domain.IdentifierEmail, spec.Primary.Type)
		s.Equal("jane@example.com", spec.Primary.Value)
		s.Require().Len(spec.Alternatives, 1)
		s.Equal(domain.IdentifierPhone, spec.Alternatives[0].Type)
	})

	s.Run("empty graph yields empty primary, not an error", func() {
		spec := BuildSubjectIdentifiers(models.IdentityGraph{})

		s.Equal(domain.IdentifierEmail, spec.Primary.Type)
		s.Empty(spec.Primary.Value)
		s.Empty(spec.Alternatives)
	})

	s.Run("alternatives re-sort by confidence ignoring priority", func() {
		g := MergeIdentifiers(models.IdentityGraph{}, []models.IdentityEntry{
			{Type: domain.IdentifierEmail, Value: "jane@example.com", Source: "crm", Confidence: 0.9},
			{Type: domain.IdentifierUPN, Value: "jdoe@corp", Source: "entra", Confidence: 0.4},
			{Type: domain.IdentifierName, Value: "Jane Doe", Source: "crm", Confidence: 0.8},
		}, "crm")

		spec := BuildSubjectIdentifiers(g)

		s.Equal(domain.IdentifierEmail, spec.Primary.Type)
		s.Require().Len(spec.Alternatives, 2)
		s.Equal(domain.IdentifierName, spec.Alternatives[0].Type, "0.8 name before 0.4 upn")
		s.Equal(domain.IdentifierUPN, spec.Alternatives[1].Type)
	})

	s.Run("alternatives below threshold are dropped", func() {
		g := models.IdentityGraph{Identifiers: []models.IdentityEntry{
			{Type: domain.IdentifierEmail, Value: "jane@example.com", Source: "crm", Confidence: 0.9},
			{Type: domain.IdentifierCustom, Value: "x", Source: "crm", Confidence: 0.05},
		}}

		spec := BuildSubjectIdentifiers(g)

		s.Empty(spec.Alternatives)
	})
}

// =============================================================================
// Aggregate Confidence Tests
// =============================================================================

func (s *ResolverSuite) TestAggregateConfidence() {
	s.Run("weighted average over identifier types", func() {
		// email 1.0*1.0 and name 0.5*0.5 over weights 1.5
		g := models.IdentityGraph{Identifiers: []models.IdentityEntry{
			{Type: domain.IdentifierEmail, Value: "jane@example.com", Confidence: 1.0},
			{Type: domain.IdentifierName, Value: "Jane Doe", Confidence: 0.5},
		}}

		got := aggregateConfidence(g.Identifiers, 0)
		s.InDelta((1.0*1.0+0.5*0.5)/1.5, got, 1e-9)
	})

	s.Run("unlisted type falls back to default weight", func() {
		got := aggregateConfidence([]models.IdentityEntry{
			{Type: domain.IdentifierType("badge"), Value: "blue", Confidence: 1.0},
		}, 0)
		s.InDelta(1.0, got, 1e-9)
	})

	s.Run("no identifiers means zero confidence", func() {
		s.Zero(aggregateConfidence(nil, 3))
	})
}
