package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ebirth/internal/registry/models"
	registry "ebirth/internal/registry/service"
	"ebirth/internal/registry/store"
	"ebirth/internal/ubrn"
	"ebirth/internal/ussd/engine"
	"ebirth/internal/ussd/handler"
	"ebirth/internal/ussd/handler/mocks"
	ussd "ebirth/internal/ussd/service"
)

func newRouter(svc handler.Service) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.New(svc, logger, nil)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func postCallback(router http.Handler, sessionID, phone, text string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("sessionId", sessionID)
	form.Set("phoneNumber", phone)
	form.Set("text", text)

	req := httptest.NewRequest(http.MethodPost, "/ussd/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type HandlerSuite struct {
	suite.Suite
	ctrl *gomock.Controller
	svc  *mocks.MockService
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.svc = mocks.NewMockService(s.ctrl)
}

func (s *HandlerSuite) TestContinuingTurnGetsCONPrefix() {
	s.svc.EXPECT().Turn(gomock.Any(), ussd.TurnRequest{
		SessionID:   "sess-1",
		PhoneNumber: "0241234567",
		Text:        "",
	}).Return(ussd.TurnResponse{Text: "Welcome", Continue: true}, nil)

	rec := postCallback(newRouter(s.svc), "sess-1", "0241234567", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	s.Equal("CON Welcome", rec.Body.String())
}

func (s *HandlerSuite) TestTerminalTurnGetsENDPrefix() {
	s.svc.EXPECT().Turn(gomock.Any(), gomock.Any()).
		Return(ussd.TurnResponse{Text: "Goodbye"}, nil)

	rec := postCallback(newRouter(s.svc), "sess-1", "0241234567", "4*1")

	s.Equal("END Goodbye", rec.Body.String())
}

func (s *HandlerSuite) TestMissingSessionFieldsEndWithoutServiceCall() {
	rec := postCallback(newRouter(s.svc), "", "", "1")

	s.Equal(http.StatusOK, rec.Code)
	s.True(strings.HasPrefix(rec.Body.String(), "END "))
}

func (s *HandlerSuite) TestServiceErrorEndsSessionPolitely() {
	s.svc.EXPECT().Turn(gomock.Any(), gomock.Any()).
		Return(ussd.TurnResponse{}, context.DeadlineExceeded)

	rec := postCallback(newRouter(s.svc), "sess-1", "0241234567", "1")

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "END Service temporarily unavailable")
}

// spyStore counts store calls so tests can assert which paths touch storage.
type spyStore struct {
	store.Store
	finds     atomic.Int64
	sequences atomic.Int64
}

func (s *spyStore) Find(ctx context.Context, u ubrn.UBRN) (*models.BirthRecord, error) {
	s.finds.Add(1)
	return s.Store.Find(ctx, u)
}

func (s *spyStore) NextSequence(ctx context.Context, regionCode, districtCode string, day time.Time) (int, error) {
	s.sequences.Add(1)
	return s.Store.NextSequence(ctx, regionCode, districtCode, day)
}

// SessionSuite drives the full stack, engine through registry, over the
// HTTP surface the aggregator sees.
type SessionSuite struct {
	suite.Suite
	store  *spyStore
	router http.Handler
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.store = &spyStore{Store: store.NewInMemory()}

	reg, err := registry.New(s.store)
	s.Require().NoError(err)

	svc, err := ussd.New(engine.New(), reg)
	s.Require().NoError(err)

	s.router = newRouter(svc)
}

var ubrnRe = regexp.MustCompile(`UBRN: ([A-Z0-9]{2}[A-Z0-9]{2}\d{6}\d{4}\d)\b`)

func (s *SessionSuite) TestParentRegistrationEndToEnd() {
	rec := postCallback(s.router, "sess-a", "0241234567",
		"1*Ama Mensah*1995-03-10*F*Accra*Efua Mensah*GHA-123456789-0*2")

	body := rec.Body.String()
	s.True(strings.HasPrefix(body, "END "), body)
	s.Contains(body, "provisionally registered")

	m := ubrnRe.FindStringSubmatch(body)
	s.Require().NotNil(m, "response should carry a structurally valid UBRN: %s", body)

	// The issued UBRN verifies and resolves to the saved record.
	verify := postCallback(s.router, "sess-a2", "0551112233", "3*"+m[1])
	s.Contains(verify.Body.String(), "VALID UBRN")
	s.Contains(verify.Body.String(), "Ama Mensah")
}

func (s *SessionSuite) TestTamperedCheckDigitNeverQueriesStore() {
	rec := postCallback(s.router, "sess-b", "0241234567", "3*GA0125081000010")

	s.Contains(rec.Body.String(), "END INVALID UBRN")
	s.Equal(int64(0), s.store.finds.Load())
}

func (s *SessionSuite) TestUnknownButWellFormedUBRNIsNotFound() {
	rec := postCallback(s.router, "sess-c", "0241234567", "3*GA0125081000017")

	s.Contains(rec.Body.String(), "END No registration found")
	s.Equal(int64(1), s.store.finds.Load())
}

func (s *SessionSuite) TestMidSessionTurnKeepsSessionOpen() {
	rec := postCallback(s.router, "sess-d", "0241234567", "1*Ama Mensah")

	s.True(strings.HasPrefix(rec.Body.String(), "CON "))
	s.Contains(rec.Body.String(), "date of birth")
	s.Equal(int64(0), s.store.sequences.Load())
}
