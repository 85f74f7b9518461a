package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"caseseal/internal/disclosure"
	"caseseal/internal/identity"
	"caseseal/internal/platform/middleware"
	"caseseal/internal/transport/http/shared"
	dErrors "caseseal/pkg/domain-errors"
)

// Service defines the view gate operations used by the HTTP layer.
type Service interface {
	IssueViewToken(ctx context.Context, actor identity.Principal, requestID uuid.UUID) (*disclosure.TokenGrant, error)
	ConsumeViewToken(ctx context.Context, actor identity.Principal, requestID uuid.UUID, presented string) (*disclosure.Payload, error)
}

// Handler wires one-time disclosure endpoints to the view gate.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a disclosure handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the auditor-only view gate endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(identity.RequireRoles(h.logger, identity.RoleAuditor))
		r.Post("/openings/{requestID}/view-token", h.HandleIssueToken)
		r.Post("/openings/{requestID}/view", h.HandleConsumeToken)
	})
}

// HandleIssueToken handles POST /openings/{requestID}/view-token requests.
func (h *Handler) HandleIssueToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.GetPrincipal(ctx)

	requestID, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request id"))
		return
	}

	grant, err := h.service.IssueViewToken(ctx, principal, requestID)
	if err != nil {
		h.logger.WarnContext(ctx, "view token issuance refused",
			"request_id", middleware.GetRequestID(ctx),
			"opening_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, grant)
}

type consumeBody struct {
	Token string `json:"token"`
}

// HandleConsumeToken handles POST /openings/{requestID}/view requests.
// Success delivers the disclosure payload exactly once.
func (h *Handler) HandleConsumeToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.GetPrincipal(ctx)

	requestID, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request id"))
		return
	}

	var req consumeBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid JSON body"))
		return
	}

	payload, err := h.service.ConsumeViewToken(ctx, principal, requestID, req.Token)
	if err != nil {
		h.logger.WarnContext(ctx, "disclosure refused",
			"request_id", middleware.GetRequestID(ctx),
			"opening_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, payload)
}
