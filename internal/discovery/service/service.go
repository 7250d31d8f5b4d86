// Package service wraps the pure ranker with catalogue access: rule and
// system catalogues load from their stores (through an optional Redis cache)
// and feed the ranking run. Catalogue administration invalidates the cache.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"dsarhub/internal/discovery/models"
	"dsarhub/internal/discovery/ranker"
	"dsarhub/internal/platform/config"
	"dsarhub/internal/platform/metrics"
	platformredis "dsarhub/internal/platform/redis"
	"dsarhub/pkg/domain"
	dErrors "dsarhub/pkg/domain-errors"
	"dsarhub/pkg/platform/sentinel"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// RuleStore is the persistence boundary for the rule catalogue.
type RuleStore interface {
	List(ctx context.Context, tenantID domain.TenantID) ([]models.DiscoveryRule, error)
	Upsert(ctx context.Context, tenantID domain.TenantID, rule models.DiscoveryRule) error
	Deactivate(ctx context.Context, tenantID domain.TenantID, ruleID domain.RuleID) error
}

// SystemStore is the persistence boundary for the system catalogue.
type SystemStore interface {
	List(ctx context.Context, tenantID domain.TenantID) ([]models.SystemInfo, error)
	Upsert(ctx context.Context, tenantID domain.TenantID, system models.SystemInfo) error
}

// Service orchestrates discovery runs and catalogue administration.
type Service struct {
	rules    RuleStore
	systems  SystemStore
	cache    *platformredis.Client
	cacheTTL time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type serviceConfig struct {
	cache    *platformredis.Client
	cacheTTL time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// WithCache enables catalogue caching. A nil client disables it, so callers
// can pass the platform client through unconditionally.
func WithCache(cache *platformredis.Client) Option {
	return func(c *serviceConfig) {
		c.cache = cache
	}
}

func New(rules RuleStore, systems SystemStore, opts ...Option) (*Service, error) {
	if rules == nil {
		return nil, errors.New("rule store is required")
	}
	if systems == nil {
		return nil, errors.New("system store is required")
	}

	cfg := &serviceConfig{cacheTTL: config.CatalogueCacheTTL}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		rules:    rules,
		systems:  systems,
		cache:    cfg.cache,
		cacheTTL: cfg.cacheTTL,
		logger:   logger,
		metrics:  cfg.metrics,
		tracer:   otel.Tracer("dsarhub/discovery"),
	}, nil
}

// Suggest loads the tenant's catalogues and ranks systems against the request
// profile. Both catalogues load concurrently; the ranking itself is pure.
func (s *Service) Suggest(ctx context.Context, tenantID domain.TenantID, input models.DiscoveryInput) ([]models.DiscoverySuggestion, error) {
	ctx, span := s.tracer.Start(ctx, "discovery.Suggest")
	defer span.End()

	if !input.DSARType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown dsar type: "+input.DSARType.String())
	}
	if input.DataSubjectType != "" && !input.DataSubjectType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown data subject type: "+input.DataSubjectType.String())
	}

	var (
		ruleCatalogue   []models.DiscoveryRule
		systemCatalogue []models.SystemInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ruleCatalogue, err = s.loadRules(gctx, tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		systemCatalogue, err = s.loadSystems(gctx, tenantID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load discovery catalogues")
	}

	systemsByID := make(map[domain.SystemID]models.SystemInfo, len(systemCatalogue))
	for _, sys := range systemCatalogue {
		systemsByID[sys.ID] = sys
	}

	suggestions := ranker.Run(input, ruleCatalogue, systemsByID)

	if s.metrics != nil {
		top := 0
		if len(suggestions) > 0 {
			top = suggestions[0].Score
		}
		s.metrics.ObserveDiscoveryRun(top)
	}
	s.logger.InfoContext(ctx, "discovery run",
		"tenant_id", tenantID,
		"dsar_type", input.DSARType,
		"rules", len(ruleCatalogue),
		"systems", len(systemCatalogue),
		"suggestions", len(suggestions),
	)
	return suggestions, nil
}

// UpsertRule validates and stores a rule, invalidating the tenant's cache.
// A nil rule ID is assigned.
func (s *Service) UpsertRule(ctx context.Context, tenantID domain.TenantID, rule models.DiscoveryRule) (models.DiscoveryRule, error) {
	if rule.ID.IsNil() {
		rule.ID = domain.RuleID(uuid.New())
	}
	if rule.SystemID.IsNil() {
		return models.DiscoveryRule{}, dErrors.New(dErrors.CodeValidation, "rule system ID is required")
	}
	if len(rule.DSARTypes) == 0 {
		return models.DiscoveryRule{}, dErrors.New(dErrors.CodeValidation, "rule must list at least one dsar type")
	}
	for _, t := range rule.DSARTypes {
		if !t.IsValid() {
			return models.DiscoveryRule{}, dErrors.New(dErrors.CodeValidation, "unknown dsar type: "+t.String())
		}
	}
	for _, t := range rule.IdentifierTypes {
		if !t.IsValid() {
			return models.DiscoveryRule{}, dErrors.New(dErrors.CodeValidation, "unknown identifier type: "+t.String())
		}
	}
	if rule.Weight < 1 || rule.Weight > 100 {
		return models.DiscoveryRule{}, dErrors.New(dErrors.CodeValidation, "rule weight must be between 1 and 100")
	}

	if err := s.rules.Upsert(ctx, tenantID, rule); err != nil {
		return models.DiscoveryRule{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store discovery rule")
	}
	s.invalidateCatalogue(ctx, tenantID)
	return rule, nil
}

// DeactivateRule marks a rule inactive, invalidating the tenant's cache.
func (s *Service) DeactivateRule(ctx context.Context, tenantID domain.TenantID, ruleID domain.RuleID) error {
	if err := s.rules.Deactivate(ctx, tenantID, ruleID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "discovery rule not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate discovery rule")
	}
	s.invalidateCatalogue(ctx, tenantID)
	return nil
}

// UpsertSystem validates and stores a catalogued system, invalidating the
// tenant's cache. A nil system ID is assigned.
func (s *Service) UpsertSystem(ctx context.Context, tenantID domain.TenantID, system models.SystemInfo) (models.SystemInfo, error) {
	if system.ID.IsNil() {
		system.ID = domain.SystemID(uuid.New())
	}
	if strings.TrimSpace(system.Name) == "" {
		return models.SystemInfo{}, dErrors.New(dErrors.CodeValidation, "system name is required")
	}
	if system.ConfidenceScore < 0 || system.ConfidenceScore > 100 {
		return models.SystemInfo{}, dErrors.New(dErrors.CodeValidation, "system confidence score must be between 0 and 100")
	}
	for _, t := range system.IdentifierTypes {
		if !t.IsValid() {
			return models.SystemInfo{}, dErrors.New(dErrors.CodeValidation, "unknown identifier type: "+t.String())
		}
	}

	if err := s.systems.Upsert(ctx, tenantID, system); err != nil {
		return models.SystemInfo{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store system")
	}
	s.invalidateCatalogue(ctx, tenantID)
	return system, nil
}

func rulesCacheKey(tenantID domain.TenantID) string {
	return fmt.Sprintf("dsarhub:catalogue:rules:%s", tenantID)
}

func systemsCacheKey(tenantID domain.TenantID) string {
	return fmt.Sprintf("dsarhub:catalogue:systems:%s", tenantID)
}

func (s *Service) loadRules(ctx context.Context, tenantID domain.TenantID) ([]models.DiscoveryRule, error) {
	var rules []models.DiscoveryRule
	if s.cacheGet(ctx, rulesCacheKey(tenantID), &rules) {
		return rules, nil
	}
	rules, err := s.rules.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, rulesCacheKey(tenantID), rules)
	return rules, nil
}

func (s *Service) loadSystems(ctx context.Context, tenantID domain.TenantID) ([]models.SystemInfo, error) {
	var systems []models.SystemInfo
	if s.cacheGet(ctx, systemsCacheKey(tenantID), &systems) {
		return systems, nil
	}
	systems, err := s.systems.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, systemsCacheKey(tenantID), systems)
	return systems, nil
}

// cacheGet reports whether the key was present and decoded. Cache failures
// degrade to store reads; they are logged, never surfaced.
func (s *Service) cacheGet(ctx context.Context, key string, v any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.WarnContext(ctx, "corrupt catalogue cache entry", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.WarnContext(ctx, "catalogue cache write failed", "key", key, "error", err)
	}
}

func (s *Service) invalidateCatalogue(ctx context.Context, tenantID domain.TenantID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, rulesCacheKey(tenantID), systemsCacheKey(tenantID)).Err(); err != nil {
		s.logger.WarnContext(ctx, "catalogue cache invalidation failed",
			"tenant_id", tenantID, "error", err)
	}
}
