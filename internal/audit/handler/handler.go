package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"caseseal/internal/audit"
	"caseseal/internal/identity"
	"caseseal/internal/platform/middleware"
	"caseseal/internal/transport/http/shared"
	dErrors "caseseal/pkg/domain-errors"
)

// Service defines the auditor-facing read operations.
type Service interface {
	Append(ctx context.Context, entry audit.Entry) error
	ReadForAuditor(ctx context.Context, filters audit.Filters) ([]audit.AuditorEvent, error)
	Stats(ctx context.Context) (*audit.Stats, error)
}

// Handler wires audit read endpoints to the audit sink.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an audit handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the auditor endpoints. Both routes are auditor-only.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(identity.RequireRoles(h.logger, identity.RoleAuditor))
		r.Get("/audit/logs", h.HandleListLogs)
		r.Get("/audit/stats", h.HandleStats)
	})
}

// HandleListLogs handles GET /audit/logs requests.
// Only the pseudonymized projection is returned, regardless of filters.
func (h *Handler) HandleListLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	principal, _ := identity.GetPrincipal(ctx)

	filters, err := parseFilters(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	events, err := h.service.ReadForAuditor(ctx, filters)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit log read failed",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	h.recordRead(ctx, principal, fmt.Sprintf("logs returned=%d", len(events)))

	h.logger.InfoContext(ctx, "audit logs read",
		"request_id", requestID,
		"returned", len(events),
	)

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

// HandleStats handles GET /audit/stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	principal, _ := identity.GetPrincipal(ctx)

	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit stats read failed",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	h.recordRead(ctx, principal, "stats")

	shared.WriteJSON(w, http.StatusOK, stats)
}

// recordRead audits the auditor's own access. Reads of the trail are
// themselves part of the trail.
func (h *Handler) recordRead(ctx context.Context, principal identity.Principal, details string) {
	err := h.service.Append(ctx, audit.Entry{
		Actor:   principal.Username,
		Role:    string(principal.Role),
		Action:  audit.ActionAuditRead,
		Target:  "audit",
		Success: true,
		Details: details,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "record audit read", "error", err)
	}
}

func parseFilters(r *http.Request) (audit.Filters, error) {
	q := r.URL.Query()

	filters := audit.Filters{
		Action: audit.Action(q.Get("action")),
		Role:   q.Get("role"),
	}

	if raw := q.Get("actions"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filters.Actions = append(filters.Actions, audit.Action(part))
			}
		}
	}

	if raw := q.Get("success"); raw != "" {
		success, err := strconv.ParseBool(raw)
		if err != nil {
			return audit.Filters{}, dErrors.New(dErrors.CodeValidation, "success must be true or false")
		}
		filters.Success = &success
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 1000 {
			return audit.Filters{}, dErrors.New(dErrors.CodeValidation, "limit must be between 1 and 1000")
		}
		filters.Limit = limit
	}

	return filters, nil
}
