package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"caseseal/internal/identity"
	"caseseal/internal/opening"
	"caseseal/internal/platform/middleware"
	"caseseal/internal/transport/http/shared"
	dErrors "caseseal/pkg/domain-errors"
)

// Service defines the quorum engine operations used by the HTTP layer.
type Service interface {
	CreateRequest(ctx context.Context, actor identity.Principal, in opening.CreateRequestInput) (*opening.Request, error)
	SubmitApproval(ctx context.Context, actor identity.Principal, requestID uuid.UUID, decision opening.Decision) (*opening.VoteResult, error)
	ListPending(ctx context.Context) ([]*opening.RequestSummary, error)
	ListApprovedUnviewed(ctx context.Context) ([]*opening.RequestSummary, error)
}

// Handler wires opening request endpoints to the quorum engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an opening handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the opening endpoints with their role guards.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(identity.RequireRoles(h.logger, identity.RoleAdmin))
		r.Post("/openings", h.HandleCreateRequest)
	})
	r.Group(func(r chi.Router) {
		r.Use(identity.RequireRoles(h.logger, identity.RoleAdmin, identity.RoleCustodian))
		r.Get("/openings/pending", h.HandleListPending)
	})
	r.Group(func(r chi.Router) {
		r.Use(identity.RequireRoles(h.logger, identity.RoleCustodian))
		r.Post("/openings/{requestID}/vote", h.HandleSubmitVote)
	})
	r.Group(func(r chi.Router) {
		r.Use(identity.RequireRoles(h.logger, identity.RoleAuditor))
		r.Get("/openings/approved-unviewed", h.HandleListApprovedUnviewed)
	})
}

type createRequestBody struct {
	CaseID    uuid.UUID `json:"case_id"`
	Reason    string    `json:"reason"`
	MRequired int       `json:"m_required"`
}

// HandleCreateRequest handles POST /openings requests.
func (h *Handler) HandleCreateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.GetPrincipal(ctx)

	var req createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid JSON body"))
		return
	}
	if req.MRequired == 0 {
		req.MRequired = 2
	}

	created, err := h.service.CreateRequest(ctx, principal, opening.CreateRequestInput{
		CaseID:    req.CaseID,
		Reason:    req.Reason,
		MRequired: req.MRequired,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "opening request creation failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"request_id": created.ID,
		"status":     created.Status,
		"m_required": created.MRequired,
	})
}

type voteBody struct {
	Decision opening.Decision `json:"decision"`
}

// HandleSubmitVote handles POST /openings/{requestID}/vote requests.
func (h *Handler) HandleSubmitVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.GetPrincipal(ctx)

	requestID, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request id"))
		return
	}

	req := voteBody{Decision: opening.DecisionApprove}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid JSON body"))
			return
		}
	}

	result, err := h.service.SubmitApproval(ctx, principal, requestID, req.Decision)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"request_id": requestID,
		"status":     result.Status,
		"approvals":  result.Approvals,
		"m_required": result.MRequired,
	})
}

// HandleListPending handles GET /openings/pending requests.
func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListPending(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, items)
}

// HandleListApprovedUnviewed handles GET /openings/approved-unviewed.
func (h *Handler) HandleListApprovedUnviewed(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListApprovedUnviewed(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, items)
}
