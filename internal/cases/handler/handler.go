package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"caseseal/internal/cases"
	"caseseal/internal/identity"
	"caseseal/internal/platform/middleware"
	"caseseal/internal/transport/http/shared"
	dErrors "caseseal/pkg/domain-errors"
)

// Service defines the case operations used by the HTTP layer.
type Service interface {
	CreateCase(ctx context.Context, actor identity.Principal, in cases.CreateCaseInput) (*cases.Case, error)
	ListCases(ctx context.Context) ([]*cases.Case, error)
	ListCasesForJudge(ctx context.Context, judgeID uuid.UUID) ([]*cases.Case, error)
	CreateResolution(ctx context.Context, actor identity.Principal, in cases.CreateResolutionInput) (*cases.Resolution, error)
	SignResolution(ctx context.Context, actor identity.Principal, resolutionID uuid.UUID) (*cases.Resolution, error)
}

// Handler wires case registry endpoints to the case service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a case handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the secretary and judge endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(identity.RequireRoles(h.logger, identity.RoleSecretary))
		r.Post("/secretary/cases", h.HandleCreateCase)
		r.Get("/secretary/cases", h.HandleListCases)
	})
	r.Group(func(r chi.Router) {
		r.Use(identity.RequireRoles(h.logger, identity.RoleJudge))
		r.Get("/judge/cases", h.HandleMyCases)
		r.Post("/judge/resolutions", h.HandleCreateResolution)
		r.Post("/judge/resolutions/{resolutionID}/sign", h.HandleSignResolution)
	})
}

type createCaseRequest struct {
	CaseNumber    string `json:"case_number"`
	Title         string `json:"title"`
	Parties       string `json:"parties"`
	AssignToJudge string `json:"assign_to_judge_username,omitempty"`
}

type caseResponse struct {
	ID         uuid.UUID    `json:"id"`
	CaseNumber string       `json:"case_number"`
	Title      string       `json:"title"`
	Status     cases.Status `json:"status"`
}

func toCaseResponse(c *cases.Case) caseResponse {
	return caseResponse{
		ID:         c.ID,
		CaseNumber: c.CaseNumber,
		Title:      c.Title,
		Status:     c.Status,
	}
}

// HandleCreateCase handles POST /secretary/cases requests.
func (h *Handler) HandleCreateCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.GetPrincipal(ctx)

	var req createCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid JSON body"))
		return
	}

	c, err := h.service.CreateCase(ctx, principal, cases.CreateCaseInput{
		CaseNumber:          req.CaseNumber,
		Title:               req.Title,
		Parties:             req.Parties,
		AssignJudgeUsername: req.AssignToJudge,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "case creation failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toCaseResponse(c))
}

// HandleListCases handles GET /secretary/cases requests.
func (h *Handler) HandleListCases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.service.ListCases(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]caseResponse, 0, len(items))
	for _, c := range items {
		out = append(out, toCaseResponse(c))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

// HandleMyCases handles GET /judge/cases requests.
func (h *Handler) HandleMyCases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.GetPrincipal(ctx)

	items, err := h.service.ListCasesForJudge(ctx, principal.ID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]caseResponse, 0, len(items))
	for _, c := range items {
		out = append(out, toCaseResponse(c))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

type createResolutionRequest struct {
	CaseID  uuid.UUID `json:"case_id"`
	Content string    `json:"content"`
}

// HandleCreateResolution handles POST /judge/resolutions requests.
func (h *Handler) HandleCreateResolution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.GetPrincipal(ctx)

	var req createResolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid JSON body"))
		return
	}

	res, err := h.service.CreateResolution(ctx, principal, cases.CreateResolutionInput{
		CaseID:  req.CaseID,
		Content: req.Content,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"resolution_id": res.ID,
		"case_id":       res.CaseID,
		"status":        res.Status,
	})
}

// HandleSignResolution handles POST /judge/resolutions/{resolutionID}/sign.
func (h *Handler) HandleSignResolution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.GetPrincipal(ctx)

	resolutionID, err := uuid.Parse(chi.URLParam(r, "resolutionID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid resolution id"))
		return
	}

	res, err := h.service.SignResolution(ctx, principal, resolutionID)
	if err != nil {
		h.logger.ErrorContext(ctx, "resolution signing failed",
			"request_id", middleware.GetRequestID(ctx),
			"resolution_id", resolutionID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"resolution_id": res.ID,
		"status":        res.Status,
		"hash":          res.DocHash,
		"signature":     res.Signature,
		"signed_at":     res.SignedAt,
	})
}
