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

	"caseseal/internal/disclosure"
	"caseseal/internal/disclosure/handler/mocks"
	"caseseal/internal/identity"
	dErrors "caseseal/pkg/domain-errors"
)

type HandlerSuite struct {
	suite.Suite

	ctrl        *gomock.Controller
	mockService *mocks.MockService
	auditor     identity.Principal
	router      http.Handler
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	s.auditor = identity.Principal{ID: uuid.New(), Username: "auditor1", Role: identity.RoleAuditor}

	h := New(s.mockService, slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(identity.WithPrincipal(req.Context(), s.auditor)))
		})
	})
	h.Register(r)
	s.router = r
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) TestIssueToken() {
	requestID := uuid.New()
	s.mockService.EXPECT().
		IssueViewToken(gomock.Any(), s.auditor, requestID).
		Return(&disclosure.TokenGrant{Token: "tok", ExpiresIn: 120}, nil)

	req := httptest.NewRequest(http.MethodPost, "/openings/"+requestID.String()+"/view-token", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"expires_in_seconds":120`)
}

func (s *HandlerSuite) TestIssueTokenAlreadyViewed() {
	requestID := uuid.New()
	s.mockService.EXPECT().
		IssueViewToken(gomock.Any(), s.auditor, requestID).
		Return(nil, dErrors.New(dErrors.CodeGone, "request already viewed"))

	req := httptest.NewRequest(http.MethodPost, "/openings/"+requestID.String()+"/view-token", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusGone, rec.Code)
}

func (s *HandlerSuite) TestConsumeToken() {
	requestID := uuid.New()
	s.mockService.EXPECT().
		ConsumeViewToken(gomock.Any(), s.auditor, requestID, "tok").
		Return(&disclosure.Payload{RequestID: requestID}, nil)

	body, _ := json.Marshal(map[string]string{"token": "tok"})
	req := httptest.NewRequest(http.MethodPost, "/openings/"+requestID.String()+"/view", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), requestID.String())
}

func (s *HandlerSuite) TestConsumeTokenForbidden() {
	requestID := uuid.New()
	s.mockService.EXPECT().
		ConsumeViewToken(gomock.Any(), s.auditor, requestID, "bad").
		Return(nil, dErrors.New(dErrors.CodeForbidden, "invalid view token"))

	body, _ := json.Marshal(map[string]string{"token": "bad"})
	req := httptest.NewRequest(http.MethodPost, "/openings/"+requestID.String()+"/view", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlerSuite) TestConsumeTokenInvalidBody() {
	req := httptest.NewRequest(http.MethodPost, "/openings/"+uuid.NewString()+"/view", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
}
