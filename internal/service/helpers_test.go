package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/repository"
	"hostel-portal/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAllotmentEvents is a testify mock of AllotmentEvents.
type MockAllotmentEvents struct {
	mock.Mock
}

func (m *MockAllotmentEvents) Publish(ctx context.Context, ev domain.AllotmentEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockAllotmentEvents) Recent(ctx context.Context, limit int) ([]AllotmentRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]AllotmentRecord), args.Error(1)
}

// MockBroadcaster is a testify mock of NoticeBroadcaster.
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(n *domain.Notice) error {
	args := m.Called(n)
	return args.Error(0)
}

// recordingMailer keeps every message so tests can read the OTP back.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	To, Subject, Text string
}

func (r *recordingMailer) Send(_ context.Context, to, subject, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMail{To: to, Subject: subject, Text: text})
	return nil
}

func (r *recordingMailer) last(t *testing.T) sentMail {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.sent, "no mail sent")
	return r.sent[len(r.sent)-1]
}

func newTestKV(t *testing.T) (*store.RedisKV, *redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return store.NewRedisKV(c, "hostel:"), c, mr
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func seedApproved(t *testing.T, repo *repository.MemoryHostelRepo, no, name string) *domain.Application {
	t.Helper()
	a := &domain.Application{
		Name:              name,
		ApplicationNumber: no,
		Email:             no + "@example.com",
		Branch:            "Computer Science",
		Gender:            "Female",
		Status:            domain.ApplicationApproved,
		FeeStatus:         domain.FeePending,
		MessFeePerMonth:   3500,
	}
	require.NoError(t, repo.CreateApplication(context.Background(), a))
	return a
}

func seedRoom(t *testing.T, repo *repository.MemoryHostelRepo, no string, capacity int) *domain.Room {
	t.Helper()
	r := &domain.Room{RoomNumber: no, Capacity: capacity, Type: domain.RoomDouble, Status: domain.RoomAvailable}
	require.NoError(t, repo.CreateRoom(context.Background(), r))
	return r
}
