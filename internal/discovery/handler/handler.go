package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	discoveryModel "dsarhub/internal/discovery/models"
	"dsarhub/internal/platform/metrics"
	"dsarhub/internal/platform/middleware"
	"dsarhub/internal/transport/http/shared"
	"dsarhub/pkg/domain"
	dErrors "dsarhub/pkg/domain-errors"
)

// Service defines the interface for discovery operations.
type Service interface {
	Suggest(ctx context.Context, tenantID domain.TenantID, input discoveryModel.DiscoveryInput) ([]discoveryModel.DiscoverySuggestion, error)
	UpsertRule(ctx context.Context, tenantID domain.TenantID, rule discoveryModel.DiscoveryRule) (discoveryModel.DiscoveryRule, error)
	DeactivateRule(ctx context.Context, tenantID domain.TenantID, ruleID domain.RuleID) error
	UpsertSystem(ctx context.Context, tenantID domain.TenantID, system discoveryModel.SystemInfo) (discoveryModel.SystemInfo, error)
}

// Handler handles discovery endpoints. All routes resolve the tenant from the
// X-Tenant-ID header; catalogue administration additionally requires an admin
// token.
type Handler struct {
	logger       *slog.Logger
	discovery    Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new discovery Handler.
func New(
	discovery Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		discovery:    discovery,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the discovery routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(router chi.Router) {
		router.Use(middleware.Recovery(h.logger))
		router.Use(middleware.RequestID)
		router.Use(middleware.Logger(h.logger))
		router.Use(middleware.Timeout(30 * time.Second))
		router.Use(middleware.ContentTypeJSON)
		router.Use(middleware.LatencyMiddleware(h.metrics))

		router.Post("/discovery/run", h.handleRun)

		router.Group(func(g chi.Router) {
			g.Use(middleware.RequireAdminToken(h.jwtValidator, h.logger))
			g.Put("/admin/discovery/rules", h.handleUpsertRule)
			g.Post("/admin/discovery/rules/{ruleID}/deactivate", h.handleDeactivateRule)
			g.Put("/admin/discovery/systems", h.handleUpsertSystem)
		})
	})
}

func tenantFromRequest(r *http.Request) (domain.TenantID, error) {
	tenantID, err := domain.ParseTenantID(r.Header.Get("X-Tenant-ID"))
	if err != nil {
		return domain.TenantID{}, dErrors.New(dErrors.CodeBadRequest, "missing or invalid X-Tenant-ID header")
	}
	return tenantID, nil
}

// handleRun ranks the tenant's systems against the request profile.
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	tenantID, err := tenantFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var input discoveryModel.DiscoveryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.WarnContext(ctx, "invalid discovery request",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	for _, t := range input.IdentifierTypes {
		if !t.IsValid() {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown identifier type: "+t.String()))
			return
		}
	}

	suggestions, err := h.discovery.Suggest(ctx, tenantID, input)
	if err != nil {
		h.logger.WarnContext(ctx, "discovery run failed",
			"request_id", requestID,
			"tenant_id", tenantID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, suggestions)
}

// handleUpsertRule creates or replaces a catalogue rule.
func (h *Handler) handleUpsertRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, err := tenantFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var rule discoveryModel.DiscoveryRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	stored, err := h.discovery.UpsertRule(ctx, tenantID, rule)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "discovery rule upserted",
		"tenant_id", tenantID,
		"rule_id", stored.ID,
		"admin", middleware.GetAdminSubject(ctx),
	)
	shared.WriteJSON(w, http.StatusOK, stored)
}

// handleDeactivateRule marks a catalogue rule inactive.
func (h *Handler) handleDeactivateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, err := tenantFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	ruleID, err := domain.ParseRuleID(chi.URLParam(r, "ruleID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid rule ID"))
		return
	}

	if err := h.discovery.DeactivateRule(ctx, tenantID, ruleID); err != nil {
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "discovery rule deactivated",
		"tenant_id", tenantID,
		"rule_id", ruleID,
		"admin", middleware.GetAdminSubject(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}

// handleUpsertSystem creates or replaces a catalogued system.
func (h *Handler) handleUpsertSystem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, err := tenantFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var system discoveryModel.SystemInfo
	if err := json.NewDecoder(r.Body).Decode(&system); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	stored, err := h.discovery.UpsertSystem(ctx, tenantID, system)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "system upserted",
		"tenant_id", tenantID,
		"system_id", stored.ID,
		"admin", middleware.GetAdminSubject(ctx),
	)
	shared.WriteJSON(w, http.StatusOK, stored)
}
