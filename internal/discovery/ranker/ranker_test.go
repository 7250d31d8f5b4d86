package ranker

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"dsarhub/internal/discovery/models"
	"dsarhub/pkg/domain"
)

// RankerSuite exercises the scoring path directly. Justification for unit
// tests: clamping, boost caps and the best-rule-per-system selection are exact
// numeric contracts that service-level tests would only probe indirectly.
type RankerSuite struct {
	suite.Suite

	crmID domain.SystemID
	hrID  domain.SystemID
}

func TestRankerSuite(t *testing.T) {
	suite.Run(t, new(RankerSuite))
}

func (s *RankerSuite) SetupTest() {
	s.crmID = domain.SystemID(uuid.New())
	s.hrID = domain.SystemID(uuid.New())
}

func (s *RankerSuite) rule(systemID domain.SystemID, weight int, mutate ...func(*models.DiscoveryRule)) models.DiscoveryRule {
	r := models.DiscoveryRule{
		ID:        domain.RuleID(uuid.New()),
		SystemID:  systemID,
		DSARTypes: []domain.DSARType{domain.DSARAccess},
		Weight:    weight,
		Active:    true,
	}
	for _, m := range mutate {
		m(&r)
	}
	return r
}

func (s *RankerSuite) system(id domain.SystemID, name string, mutate ...func(*models.SystemInfo)) models.SystemInfo {
	sys := models.SystemInfo{
		ID:             id,
		Name:           name,
		InScopeForDSAR: true,
		IdentifierTypes: []domain.IdentifierType{
			domain.IdentifierEmail,
		},
	}
	for _, m := range mutate {
		m(&sys)
	}
	return sys
}

func accessInput(types ...domain.IdentifierType) models.DiscoveryInput {
	return models.DiscoveryInput{DSARType: domain.DSARAccess, IdentifierTypes: types}
}

// =============================================================================
// Gating Tests
// =============================================================================

func (s *RankerSuite) TestGating() {
	systems := map[domain.SystemID]models.SystemInfo{
		s.crmID: s.system(s.crmID, "CRM"),
	}

	s.Run("inactive rules are skipped", func() {
		rules := []models.DiscoveryRule{
			s.rule(s.crmID, 50, func(r *models.DiscoveryRule) { r.Active = false }),
		}
		s.Empty(Run(accessInput(), rules, systems))
	})

	s.Run("dsar type must be listed", func() {
		rules := []models.DiscoveryRule{
			s.rule(s.crmID, 50, func(r *models.DiscoveryRule) {
				r.DSARTypes = []domain.DSARType{domain.DSARDeletion}
			}),
		}
		s.Empty(Run(accessInput(), rules, systems))
	})

	s.Run("subject type restriction applies only when both sides are set", func() {
		rules := []models.DiscoveryRule{
			s.rule(s.crmID, 50, func(r *models.DiscoveryRule) {
				r.DataSubjectTypes = []domain.DataSubjectType{domain.SubjectEmployee}
			}),
		}

		in := accessInput()
		in.DataSubjectType = domain.SubjectCustomer
		s.Empty(Run(in, rules, systems), "restricted rule rejects a non-member subject type")

		in.DataSubjectType = ""
		s.Len(Run(in, rules, systems), 1, "unset subject type passes a restricted rule")

		in.DataSubjectType = domain.SubjectEmployee
		s.Len(Run(in, rules, systems), 1)
	})

	s.Run("rules pointing at unknown systems are skipped", func() {
		rules := []models.DiscoveryRule{s.rule(domain.SystemID(uuid.New()), 50)}
		s.Empty(Run(accessInput(), rules, systems))
	})
}

// =============================================================================
// Scoring Tests
// =============================================================================

func (s *RankerSuite) TestScoring() {
	s.Run("base weight alone produces one reason", func() {
		systems := map[domain.SystemID]models.SystemInfo{
			s.crmID: s.system(s.crmID, "CRM", func(sys *models.SystemInfo) {
				sys.IdentifierTypes = nil
			}),
		}
		got := Run(accessInput(), []models.DiscoveryRule{s.rule(s.crmID, 42)}, systems)

		s.Require().Len(got, 1)
		s.Equal(42, got[0].Score)
		s.Require().Len(got[0].Reasons, 1)
		s.Contains(got[0].Reasons[0], "base weight 42")
	})

	s.Run("identifier boost caps at 30 and lists matched types", func() {
		systems := map[domain.SystemID]models.SystemInfo{
			s.crmID: s.system(s.crmID, "CRM", func(sys *models.SystemInfo) {
				sys.IdentifierTypes = []domain.IdentifierType{
					domain.IdentifierEmail, domain.IdentifierUPN, domain.IdentifierPhone,
				}
			}),
		}
		got := Run(
			accessInput(domain.IdentifierEmail, domain.IdentifierUPN, domain.IdentifierPhone),
			[]models.DiscoveryRule{s.rule(s.crmID, 40)},
			systems,
		)

		s.Require().Len(got, 1)
		s.Equal(70, got[0].Score, "three matches still add only 30")
		s.Require().Len(got[0].Reasons, 2)
		s.Contains(got[0].Reasons[1], "email, upn, phone")
		s.Contains(got[0].Reasons[1], "+30")
	})

	s.Run("rule identifier types supplement the system's own", func() {
		systems := map[domain.SystemID]models.SystemInfo{
			s.crmID: s.system(s.crmID, "CRM", func(sys *models.SystemInfo) {
				sys.IdentifierTypes = nil
			}),
		}
		rules := []models.DiscoveryRule{
			s.rule(s.crmID, 40, func(r *models.DiscoveryRule) {
				r.IdentifierTypes = []domain.IdentifierType{domain.IdentifierEmployeeID}
			}),
		}
		got := Run(accessInput(domain.IdentifierEmployeeID), rules, systems)

		s.Require().Len(got, 1)
		s.Equal(55, got[0].Score)
	})

	s.Run("confidence boost is the rounded tenth of the system score", func() {
		systems := map[domain.SystemID]models.SystemInfo{
			s.crmID: s.system(s.crmID, "CRM", func(sys *models.SystemInfo) {
				sys.ConfidenceScore = 75
				sys.IdentifierTypes = nil
			}),
		}
		got := Run(accessInput(), []models.DiscoveryRule{s.rule(s.crmID, 40)}, systems)

		s.Require().Len(got, 1)
		s.Equal(48, got[0].Score)
		s.Require().Len(got[0].Reasons, 2)
		s.Contains(got[0].Reasons[1], "75/100")
		s.Contains(got[0].Reasons[1], "+8")
	})

	s.Run("out-of-scope system with typical score is excluded", func() {
		// weight 50 + identifier boost 30 + confidence boost 8 - 100 = -12 -> 0
		systems := map[domain.SystemID]models.SystemInfo{
			s.crmID: s.system(s.crmID, "CRM", func(sys *models.SystemInfo) {
				sys.InScopeForDSAR = false
				sys.ConfidenceScore = 75
				sys.IdentifierTypes = []domain.IdentifierType{
					domain.IdentifierEmail, domain.IdentifierUPN,
				}
			}),
		}
		got := Run(
			accessInput(domain.IdentifierEmail, domain.IdentifierUPN),
			[]models.DiscoveryRule{s.rule(s.crmID, 50)},
			systems,
		)

		s.Empty(got)
	})

	s.Run("heavily boosted out-of-scope system can survive the penalty", func() {
		// Known scoring quirk: the penalty is additive before the clamp.
		systems := map[domain.SystemID]models.SystemInfo{
			s.crmID: s.system(s.crmID, "CRM", func(sys *models.SystemInfo) {
				sys.InScopeForDSAR = false
				sys.ConfidenceScore = 100
				sys.IdentifierTypes = []domain.IdentifierType{
					domain.IdentifierEmail, domain.IdentifierUPN,
				}
			}),
		}
		got := Run(
			accessInput(domain.IdentifierEmail, domain.IdentifierUPN),
			[]models.DiscoveryRule{s.rule(s.crmID, 100)},
			systems,
		)

		s.Require().Len(got, 1)
		s.Equal(40, got[0].Score, "100 + 30 + 10 - 100")
		s.True(strings.Contains(got[0].Reasons[len(got[0].Reasons)-1], "out of scope"))
	})

	s.Run("score clamps to 100", func() {
		systems := map[domain.SystemID]models.SystemInfo{
			s.crmID: s.system(s.crmID, "CRM", func(sys *models.SystemInfo) {
				sys.ConfidenceScore = 100
				sys.IdentifierTypes = []domain.IdentifierType{domain.IdentifierEmail}
			}),
		}
		got := Run(accessInput(domain.IdentifierEmail), []models.DiscoveryRule{s.rule(s.crmID, 100)}, systems)

		s.Require().Len(got, 1)
		s.Equal(100, got[0].Score)
	})
}

// =============================================================================
// Selection & Ordering Tests
// =============================================================================

func (s *RankerSuite) TestSelectionAndOrdering() {
	s.Run("rules for the same system compete, not compound", func() {
		systems := map[domain.SystemID]models.SystemInfo{
			s.crmID: s.system(s.crmID, "CRM", func(sys *models.SystemInfo) {
				sys.IdentifierTypes = nil
			}),
		}
		rules := []models.DiscoveryRule{
			s.rule(s.crmID, 40),
			s.rule(s.crmID, 60),
		}
		got := Run(accessInput(), rules, systems)

		s.Require().Len(got, 1)
		s.Equal(60, got[0].Score)
		s.Contains(got[0].Reasons[0], "base weight 60", "reasons follow the winning rule")
	})

	s.Run("suggestions sort by score descending, ties keep rule order", func() {
		systems := map[domain.SystemID]models.SystemInfo{
			s.crmID: s.system(s.crmID, "CRM", func(sys *models.SystemInfo) { sys.IdentifierTypes = nil }),
			s.hrID:  s.system(s.hrID, "HRIS", func(sys *models.SystemInfo) { sys.IdentifierTypes = nil }),
		}
		rules := []models.DiscoveryRule{
			s.rule(s.crmID, 50),
			s.rule(s.hrID, 50),
		}
		got := Run(accessInput(), rules, systems)

		s.Require().Len(got, 2)
		s.Equal("CRM", got[0].SystemName)
		s.Equal("HRIS", got[1].SystemName)
	})

	s.Run("zero-score systems are dropped", func() {
		systems := map[domain.SystemID]models.SystemInfo{
			s.crmID: s.system(s.crmID, "CRM", func(sys *models.SystemInfo) {
				sys.InScopeForDSAR = false
				sys.IdentifierTypes = nil
			}),
		}
		got := Run(accessInput(), []models.DiscoveryRule{s.rule(s.crmID, 50)}, systems)

		s.Empty(got)
	})
}
