package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"caseseal/internal/audit"
	"caseseal/internal/audit/handler/mocks"
	"caseseal/internal/identity"
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

func auditor() *identity.Principal {
	return &identity.Principal{ID: uuid.New(), Username: "auditor1", Role: identity.RoleAuditor}
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) TestListLogs() {
	events := []audit.AuditorEvent{{
		ID:          uuid.New(),
		ActorPseudo: "A1B2C3D4E5F60708",
		Action:      audit.ActionOpeningView,
		Role:        "auditor",
		Success:     true,
	}}
	s.mockService.EXPECT().
		ReadForAuditor(gomock.Any(), audit.Filters{}).
		Return(events, nil)
	s.mockService.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/audit/logs", nil)
	rec := httptest.NewRecorder()

	s.routerAs(auditor()).ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "A1B2C3D4E5F60708")
	s.Contains(rec.Body.String(), `"count":1`)
}

func (s *HandlerSuite) TestListLogsParsesFilters() {
	success := true
	expected := audit.Filters{
		Action:  audit.ActionOpeningApproval,
		Actions: []audit.Action{audit.ActionOpeningCreate, audit.ActionOpeningView},
		Role:    "custodian",
		Success: &success,
		Limit:   25,
	}
	s.mockService.EXPECT().
		ReadForAuditor(gomock.Any(), expected).
		Return([]audit.AuditorEvent{}, nil)
	s.mockService.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Return(nil)

	target := "/audit/logs?action=OPENING_APPROVAL&actions=OPENING_CREATE,OPENING_VIEW&role=custodian&success=true&limit=25"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()

	s.routerAs(auditor()).ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlerSuite) TestListLogsRejectsBadFilters() {
	for _, target := range []string{
		"/audit/logs?success=maybe",
		"/audit/logs?limit=0",
		"/audit/logs?limit=5000",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()

		s.routerAs(auditor()).ServeHTTP(rec, req)

		s.Equal(http.StatusBadRequest, rec.Code, target)
	}
}

func (s *HandlerSuite) TestListLogsRecordsTheRead() {
	s.mockService.EXPECT().
		ReadForAuditor(gomock.Any(), gomock.Any()).
		Return([]audit.AuditorEvent{}, nil)
	s.mockService.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, entry audit.Entry) error {
			s.Equal(audit.ActionAuditRead, entry.Action)
			s.Equal("auditor1", entry.Actor)
			s.Equal("audit", entry.Target)
			s.True(entry.Success)
			return nil
		})

	req := httptest.NewRequest(http.MethodGet, "/audit/logs", nil)
	rec := httptest.NewRecorder()

	s.routerAs(auditor()).ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlerSuite) TestStats() {
	s.mockService.EXPECT().
		Stats(gomock.Any()).
		Return(&audit.Stats{
			Total:     3,
			ByAction:  map[string]int{"OPENING_VIEW": 3},
			ByRole:    map[string]int{"auditor": 3},
			BySuccess: map[string]int{"success": 3, "failure": 0},
		}, nil)
	s.mockService.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/audit/stats", nil)
	rec := httptest.NewRecorder()

	s.routerAs(auditor()).ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"total_events":3`)
}

func (s *HandlerSuite) TestAuditorOnly() {
	for _, target := range []string{"/audit/logs", "/audit/stats"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()

		admin := &identity.Principal{ID: uuid.New(), Username: "admin1", Role: identity.RoleAdmin}
		s.routerAs(admin).ServeHTTP(rec, req)

		s.Equal(http.StatusForbidden, rec.Code, target)
	}
}
