//go:build integration

package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"dsarhub/internal/discovery/models"
	"dsarhub/internal/discovery/service"
	rulestore "dsarhub/internal/discovery/store/rules"
	systemstore "dsarhub/internal/discovery/store/systems"
	platformredis "dsarhub/internal/platform/redis"
	"dsarhub/pkg/domain"
	"dsarhub/pkg/testutil/containers"
)

// CatalogueCacheSuite verifies the redis-backed catalogue cache: reads are
// served from the cache once warm, and catalogue writes invalidate it.
type CatalogueCacheSuite struct {
	suite.Suite
	redis    *containers.RedisContainer
	tenantID domain.TenantID
	rules    *rulestore.InMemoryStore
	systems  *systemstore.InMemoryStore
	service  *service.Service
}

func TestCatalogueCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CatalogueCacheSuite))
}

func (s *CatalogueCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
}

func (s *CatalogueCacheSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.redis.FlushAll(ctx))

	s.tenantID = domain.TenantID(uuid.New())
	s.rules = rulestore.NewInMemoryStore()
	s.systems = systemstore.NewInMemoryStore()

	var err error
	s.service, err = service.New(s.rules, s.systems,
		service.WithCache(&platformredis.Client{Client: s.redis.Client}),
	)
	s.Require().NoError(err)
}

func (s *CatalogueCacheSuite) seedCatalogue() models.DiscoveryRule {
	ctx := context.Background()
	system, err := s.service.UpsertSystem(ctx, s.tenantID, models.SystemInfo{
		Name:            "CRM",
		InScopeForDSAR:  true,
		ConfidenceScore: 80,
		IdentifierTypes: []domain.IdentifierType{domain.IdentifierEmail},
	})
	s.Require().NoError(err)

	rule, err := s.service.UpsertRule(ctx, s.tenantID, models.DiscoveryRule{
		SystemID:  system.ID,
		DSARTypes: []domain.DSARType{domain.DSARAccess},
		Weight:    50,
		Active:    true,
	})
	s.Require().NoError(err)
	return rule
}

func (s *CatalogueCacheSuite) TestSuggestServesFromCacheOnceWarm() {
	ctx := context.Background()
	rule := s.seedCatalogue()

	first, err := s.service.Suggest(ctx, s.tenantID, models.DiscoveryInput{DSARType: domain.DSARAccess})
	s.Require().NoError(err)
	s.Require().Len(first, 1)

	// Mutate the backing store without going through the service. A warm cache
	// keeps serving the previous catalogue until it is invalidated.
	s.Require().NoError(s.rules.Deactivate(ctx, s.tenantID, rule.ID))

	second, err := s.service.Suggest(ctx, s.tenantID, models.DiscoveryInput{DSARType: domain.DSARAccess})
	s.Require().NoError(err)
	s.Len(second, 1, "warm cache bypasses the store")
}

func (s *CatalogueCacheSuite) TestCatalogueWritesInvalidateCache() {
	ctx := context.Background()
	s.seedCatalogue()

	first, err := s.service.Suggest(ctx, s.tenantID, models.DiscoveryInput{DSARType: domain.DSARAccess})
	s.Require().NoError(err)
	s.Require().Len(first, 1)

	system, err := s.service.UpsertSystem(ctx, s.tenantID, models.SystemInfo{
		Name:            "HRIS",
		InScopeForDSAR:  true,
		ConfidenceScore: 70,
		IdentifierTypes: []domain.IdentifierType{domain.IdentifierEmployeeID},
	})
	s.Require().NoError(err)
	_, err = s.service.UpsertRule(ctx, s.tenantID, models.DiscoveryRule{
		SystemID:  system.ID,
		DSARTypes: []domain.DSARType{domain.DSARAccess},
		Weight:    40,
		Active:    true,
	})
	s.Require().NoError(err)

	second, err := s.service.Suggest(ctx, s.tenantID, models.DiscoveryInput{DSARType: domain.DSARAccess})
	s.Require().NoError(err)
	s.Len(second, 2, "catalogue writes drop the cached copy")
}
