// Package service owns the stored-graph lifecycle around the pure resolver:
// building a case's initial graph, folding connector results into it, and
// deriving the query spec handed to connector dispatch. The resolver itself
// never touches storage; this package serializes the read-merge-write cycle
// per case so concurrent connector callbacks cannot lose updates.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"dsarhub/internal/identity/models"
	"dsarhub/internal/identity/resolver"
	"dsarhub/internal/platform/metrics"
	"dsarhub/pkg/domain"
	dErrors "dsarhub/pkg/domain-errors"
	"dsarhub/pkg/platform/sentinel"
)

// GraphStore is the persistence boundary for identity graphs. Stores return
// sentinel errors; the service translates them into domain errors.
type GraphStore interface {
	Get(ctx context.Context, caseID domain.CaseID) (models.IdentityGraph, error)
	Save(ctx context.Context, caseID domain.CaseID, g models.IdentityGraph) error
}

// Service orchestrates identity graph operations for cases.
type Service struct {
	graphs    GraphStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	caseLocks *keyedMutex
}

type serviceConfig struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
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

func New(graphs GraphStore, opts ...Option) (*Service, error) {
	if graphs == nil {
		return nil, errors.New("graph store is required")
	}

	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		graphs:    graphs,
		logger:    logger,
		metrics:   cfg.metrics,
		tracer:    otel.Tracer("dsarhub/identity"),
		caseLocks: newKeyedMutex(),
	}, nil
}

// ResolveCase builds the initial identity graph from the case's subject record
// and stores it as the case's authoritative copy.
func (s *Service) ResolveCase(ctx context.Context, caseID domain.CaseID, subject models.SubjectRecord) (models.IdentityGraph, error) {
	ctx, span := s.tracer.Start(ctx, "identity.ResolveCase")
	defer span.End()

	if caseID.IsNil() {
		return models.IdentityGraph{}, dErrors.New(dErrors.CodeBadRequest, "case ID is required")
	}
	if strings.TrimSpace(subject.FullName) == "" {
		return models.IdentityGraph{}, dErrors.New(dErrors.CodeValidation, "subject full name is required")
	}

	graph := resolver.BuildInitialGraph(subject)
	if err := s.graphs.Save(ctx, caseID, graph); err != nil {
		return models.IdentityGraph{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store identity graph")
	}

	if s.metrics != nil {
		s.metrics.IncrementGraphsResolved()
	}
	s.logger.InfoContext(ctx, "identity graph resolved",
		"case_id", caseID,
		"identifiers", len(graph.Identifiers),
		"confidence", graph.Confidence,
	)
	return graph, nil
}

// MergeConnectorResults folds a connector's discovered identifiers and system
// sightings into the case's graph. The read-merge-write sequence runs under a
// per-case lock; entries without a source are attributed to the connector.
func (s *Service) MergeConnectorResults(
	ctx context.Context,
	caseID domain.CaseID,
	source string,
	entries []models.IdentityEntry,
	sightings []models.ResolvedSystem,
) (models.IdentityGraph, error) {
	ctx, span := s.tracer.Start(ctx, "identity.MergeConnectorResults")
	defer span.End()

	if source == "" {
		return models.IdentityGraph{}, dErrors.New(dErrors.CodeBadRequest, "connector source is required")
	}

	unlock := s.caseLocks.Lock(caseID)
	defer unlock()

	graph, err := s.graphs.Get(ctx, caseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.IdentityGraph{}, dErrors.New(dErrors.CodeNotFound, "identity graph not found for case")
		}
		return models.IdentityGraph{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity graph")
	}

	merged := resolver.MergeIdentifiers(graph, entries, source)
	for _, sighting := range sightings {
		merged = resolver.AddResolvedSystem(merged, sighting)
	}

	if err := s.graphs.Save(ctx, caseID, merged); err != nil {
		return models.IdentityGraph{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store identity graph")
	}

	if s.metrics != nil {
		s.metrics.IncrementIdentifierMerges()
	}
	s.logger.InfoContext(ctx, "connector results merged",
		"case_id", caseID,
		"source", source,
		"entries", len(entries),
		"sightings", len(sightings),
		"identifiers", len(merged.Identifiers),
		"confidence", merged.Confidence,
	)
	return merged, nil
}

// GetGraph returns the case's current identity graph.
func (s *Service) GetGraph(ctx context.Context, caseID domain.CaseID) (models.IdentityGraph, error) {
	graph, err := s.graphs.Get(ctx, caseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.IdentityGraph{}, dErrors.New(dErrors.CodeNotFound, "identity graph not found for case")
		}
		return models.IdentityGraph{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity graph")
	}
	return graph, nil
}

// QueryIdentifiers derives the subject-identifier query spec for the case. An
// empty primary value means the graph holds insufficient data to query.
func (s *Service) QueryIdentifiers(ctx context.Context, caseID domain.CaseID) (models.SubjectIdentifiers, error) {
	graph, err := s.GetGraph(ctx, caseID)
	if err != nil {
		return models.SubjectIdentifiers{}, err
	}
	return resolver.BuildSubjectIdentifiers(graph), nil
}
