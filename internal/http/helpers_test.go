package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/repository"
	"hostel-portal/internal/service"
	"hostel-portal/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	handler    http.Handler
	hostel     *repository.MemoryHostelRepo
	complaints *repository.MemoryComplaintsRepo
	tokens     *service.TokenIssuer
	mail       *mailbox
	mr         *miniredis.Miniredis
}

// mailbox records outgoing mail so tests can read OTP codes back.
type mailbox struct {
	mu   sync.Mutex
	last map[string]string
}

func (m *mailbox) Send(_ context.Context, to, _, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[to] = text
	return nil
}

var otpPattern = regexp.MustCompile(`\b\d{6}\b`)

func (m *mailbox) code(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	code := otpPattern.FindString(m.last[to])
	require.NotEmpty(t, code, "no OTP mailed to %s", to)
	return code
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	logger := zap.NewNop()
	f := &fixture{
		hostel:     repository.NewMemoryHostelRepo(),
		complaints: repository.NewMemoryComplaintsRepo(),
		tokens:     service.NewTokenIssuer("test-secret", time.Hour),
		mail:       &mailbox{last: map[string]string{}},
		mr:         mr,
	}
	kv := store.NewRedisKV(rc, "test:")
	events := service.NewRedisAllotmentEvents(rc, "test:allotments", logger)
	otp := service.NewOTPManager(kv, 10*time.Minute, 5, logger)
	authSvc := service.NewAuthService(repository.NewMemoryAdminsRepo(), f.hostel, kv, otp, f.tokens, f.mail, 3500, logger)

	authenticator := NewAuthenticator(authSvc, logger)
	apps := NewApplicationHandler(
		service.NewApplicationService(f.hostel, f.hostel, events, logger),
		service.NewAllotmentService(f.hostel, events, logger),
		logger,
	)
	rooms := NewRoomHandler(service.NewRoomService(f.hostel, logger), logger)
	fees := NewFeeHandler(service.NewFeeService(f.hostel, 15, logger), logger)
	complaints := NewComplaintHandler(service.NewComplaintService(f.complaints, f.hostel, logger), logger)
	notices := NewNoticeHandler(service.NewNoticeService(repository.NewMemoryNoticesRepo(), nil, logger), logger)

	router := NewRouter(logger)
	router.RegisterHealth(map[string]HealthCheck{
		"redis": func(ctx context.Context) error { return rc.Ping(ctx).Err() },
	})
	router.RegisterAuthRoutes(NewAuthHandler(authSvc, logger))
	router.RegisterStudentRoutes(authenticator, apps, complaints)
	router.RegisterHostelRoutes(authenticator, apps, rooms, fees, complaints)
	router.RegisterNoticeRoutes(authenticator, notices)
	router.RegisterFallback()

	f.handler = Wrap(router, Options{CORSOrigins: []string{"http://localhost:5173"}, RequestTimeout: 5 * time.Second}, logger)
	return f
}

func (f *fixture) adminToken(t *testing.T) string {
	t.Helper()
	tok, _, err := f.tokens.Issue("warden@example.com", domain.RoleAdmin, "Warden")
	require.NoError(t, err)
	return tok
}

func (f *fixture) studentToken(t *testing.T, applicationNumber string) string {
	t.Helper()
	tok, _, err := f.tokens.Issue(applicationNumber, domain.RoleStudent, "Student")
	require.NoError(t, err)
	return tok
}

// do sends body as JSON (or verbatim when it is a string). hdr holds
// alternating header names and values.
func (f *fixture) do(t *testing.T, method, path, token string, body any, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) seedApplication(t *testing.T, a domain.Application) *domain.Application {
	t.Helper()
	if a.Status == "" {
		a.Status = domain.ApplicationApproved
	}
	if a.FeeStatus == "" {
		a.FeeStatus = domain.FeePending
	}
	if a.Email == "" {
		a.Email = a.ApplicationNumber + "@example.com"
	}
	if a.MessFeePerMonth == 0 {
		a.MessFeePerMonth = 3500
	}
	require.NoError(t, f.hostel.CreateApplication(context.Background(), &a))
	return &a
}

func (f *fixture) seedRoom(t *testing.T, number string, capacity int) *domain.Room {
	t.Helper()
	r := &domain.Room{RoomNumber: number, Capacity: capacity, Type: domain.RoomDouble, Status: domain.RoomAvailable}
	require.NoError(t, f.hostel.CreateRoom(context.Background(), r))
	return r
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeJSON[MessageResponse](t, rec).Message
}
