package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"caseseal/internal/identity"
	"caseseal/internal/opening"
	"caseseal/internal/opening/handler/mocks"
	dErrors "caseseal/pkg/domain-errors"
)

type HandlerSuite struct {
	suite.Suite

	ctrl        *gomock.Controller
	mockService *mocks.MockService
	handler     *Handler
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	s.handler = New(s.mockService, slog.New(slog.DiscardHandler))
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

// routerAs builds the route tree with the given principal pre-resolved,
// standing in for the bearer-token middleware.
func (s *HandlerSuite) routerAs(principal *identity.Principal) http.Handler {
	r := chi.NewRouter()
	if principal != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(identity.WithPrincipal(req.Context(), *principal)))
			})
		})
	}
	s.handler.Register(r)
	return r
}

func principalWith(role identity.Role) *identity.Principal {
	return &identity.Principal{ID: uuid.New(), Username: "user-" + string(role), Role: role}
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) TestCreateRequest() {
	admin := principalWith(identity.RoleAdmin)
	created := &opening.Request{ID: uuid.New(), Status: opening.StatusPending, MRequired: 2}
	s.mockService.EXPECT().
		CreateRequest(gomock.Any(), *admin, gomock.Any()).
		Return(created, nil)

	body, _ := json.Marshal(map[string]any{
		"case_id":    uuid.New(),
		"reason":     "appeal review requires the sealed record",
		"m_required": 2,
	})
	req := httptest.NewRequest(http.MethodPost, "/openings", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.routerAs(admin).ServeHTTP(rec, req)

	s.Equal(http.StatusCreated, rec.Code)
	s.Contains(rec.Body.String(), created.ID.String())
}

func (s *HandlerSuite) TestCreateRequestInvalidJSON() {
	req := httptest.NewRequest(http.MethodPost, "/openings", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()

	s.routerAs(principalWith(identity.RoleAdmin)).ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestCreateRequestForbiddenForCustodian() {
	req := httptest.NewRequest(http.MethodPost, "/openings", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()

	s.routerAs(principalWith(identity.RoleCustodian)).ServeHTTP(rec, req)

	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlerSuite) TestCreateRequestUnauthenticated() {
	req := httptest.NewRequest(http.MethodPost, "/openings", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()

	s.routerAs(nil).ServeHTTP(rec, req)

	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestSubmitVote() {
	custodian := principalWith(identity.RoleCustodian)
	requestID := uuid.New()
	s.mockService.EXPECT().
		SubmitApproval(gomock.Any(), *custodian, requestID, opening.DecisionApprove).
		Return(&opening.VoteResult{Approvals: 2, Status: opening.StatusApprovedMReached, MRequired: 2}, nil)

	body, _ := json.Marshal(map[string]string{"decision": "APPROVE"})
	req := httptest.NewRequest(http.MethodPost, "/openings/"+requestID.String()+"/vote", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.routerAs(custodian).ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "APPROVED_M_REACHED")
}

func (s *HandlerSuite) TestSubmitVoteDuplicate() {
	custodian := principalWith(identity.RoleCustodian)
	requestID := uuid.New()
	s.mockService.EXPECT().
		SubmitApproval(gomock.Any(), *custodian, requestID, opening.DecisionApprove).
		Return(nil, dErrors.New(dErrors.CodeConflict, "custodian already voted on this request"))

	body, _ := json.Marshal(map[string]string{"decision": "APPROVE"})
	req := httptest.NewRequest(http.MethodPost, "/openings/"+requestID.String()+"/vote", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.routerAs(custodian).ServeHTTP(rec, req)

	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerSuite) TestSubmitVoteInvalidID() {
	req := httptest.NewRequest(http.MethodPost, "/openings/not-a-uuid/vote", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()

	s.routerAs(principalWith(identity.RoleCustodian)).ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestListPendingAllowsCustodian() {
	s.mockService.EXPECT().ListPending(gomock.Any()).Return([]*opening.RequestSummary{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/openings/pending", nil)
	rec := httptest.NewRecorder()

	s.routerAs(principalWith(identity.RoleCustodian)).ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlerSuite) TestListApprovedUnviewedAuditorOnly() {
	req := httptest.NewRequest(http.MethodGet, "/openings/approved-unviewed", nil)
	rec := httptest.NewRecorder()

	s.routerAs(principalWith(identity.RoleAdmin)).ServeHTTP(rec, req)
	s.Equal(http.StatusForbidden, rec.Code)

	s.mockService.EXPECT().ListApprovedUnviewed(gomock.Any()).Return([]*opening.RequestSummary{}, nil)
	rec = httptest.NewRecorder()
	s.routerAs(principalWith(identity.RoleAuditor)).ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)
}
