package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	identityModel "dsarhub/internal/identity/models"
	"dsarhub/internal/platform/metrics"
	"dsarhub/internal/platform/middleware"
	"dsarhub/internal/transport/http/shared"
	"dsarhub/pkg/domain"
	dErrors "dsarhub/pkg/domain-errors"
)

// Service defines the interface for identity graph operations.
type Service interface {
	ResolveCase(ctx context.Context, caseID domain.CaseID, subject identityModel.SubjectRecord) (identityModel.IdentityGraph, error)
	MergeConnectorResults(ctx context.Context, caseID domain.CaseID, source string, entries []identityModel.IdentityEntry, sightings []identityModel.ResolvedSystem) (identityModel.IdentityGraph, error)
	GetGraph(ctx context.Context, caseID domain.CaseID) (identityModel.IdentityGraph, error)
	QueryIdentifiers(ctx context.Context, caseID domain.CaseID) (identityModel.SubjectIdentifiers, error)
}

// Handler handles identity-graph endpoints.
type Handler struct {
	logger        *slog.Logger
	identity      Service
	metrics       *metrics.Metrics
	connectorKeys map[string]string
}

// New creates a new identity Handler.
func New(
	identity Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	connectorKeys map[string]string) *Handler {
	return &Handler{
		logger:        logger,
		identity:      identity,
		metrics:       metrics,
		connectorKeys: connectorKeys,
	}
}

// Register registers the identity routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(router chi.Router) {
		router.Use(middleware.Recovery(h.logger))
		router.Use(middleware.RequestID)
		router.Use(middleware.Logger(h.logger))
		router.Use(middleware.Timeout(30 * time.Second))
		router.Use(middleware.ContentTypeJSON)
		router.Use(middleware.LatencyMiddleware(h.metrics))

		router.Post("/cases/{caseID}/identity/resolve", h.handleResolve)
		router.Get("/cases/{caseID}/identity", h.handleGetGraph)
		router.Get("/cases/{caseID}/identity/query-spec", h.handleQuerySpec)

		// Merge callbacks authenticate as a connector; the connector name
		// becomes the provenance source of the merged facts.
		router.Group(func(g chi.Router) {
			g.Use(middleware.RequireConnectorKey(h.connectorKeys, h.logger))
			g.Post("/cases/{caseID}/identity/merge", h.handleMerge)
		})
	})
}

func caseIDFromRequest(r *http.Request) (domain.CaseID, error) {
	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		return domain.CaseID{}, dErrors.New(dErrors.CodeBadRequest, "invalid case ID")
	}
	return caseID, nil
}

// handleResolve builds and stores the initial identity graph for a case.
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	caseID, err := caseIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var subject identityModel.SubjectRecord
	if err := json.NewDecoder(r.Body).Decode(&subject); err != nil {
		h.logger.WarnContext(ctx, "invalid resolve request",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	graph, err := h.identity.ResolveCase(ctx, caseID, subject)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve case failed",
			"request_id", requestID,
			"case_id", caseID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, graph)
}

// handleMerge folds connector results into the case's graph.
func (h *Handler) handleMerge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	source := middleware.GetConnectorSource(ctx)
	if source == "" {
		// This should never happen if RequireConnectorKey is configured correctly
		h.logger.ErrorContext(ctx, "connector source missing from context despite auth middleware",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	caseID, err := caseIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req identityModel.MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid merge request",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	graph, err := h.identity.MergeConnectorResults(ctx, caseID, source, req.Identifiers, req.ResolvedSystems)
	if err != nil {
		h.logger.WarnContext(ctx, "merge connector results failed",
			"request_id", requestID,
			"case_id", caseID,
			"source", source,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, graph)
}

// handleGetGraph returns the case's current identity graph.
func (h *Handler) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	graph, err := h.identity.GetGraph(r.Context(), caseID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, graph)
}

// handleQuerySpec returns the subject-identifier query spec for the case.
func (h *Handler) handleQuerySpec(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	spec, err := h.identity.QueryIdentifiers(r.Context(), caseID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, spec)
}
