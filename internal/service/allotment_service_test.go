package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAllotmentService_EmptyRoomNumber(t *testing.T) {
	repo := repository.NewMemoryHostelRepo()
	seedApproved(t, repo, "APP000000001", "Asha")
	seedRoom(t, repo, "A-101", 2)
	events := &MockAllotmentEvents{}
	svc := NewAllotmentService(repo, events, zap.NewNop())

	for _, rn := range []string{"", "   "} {
		_, _, err := svc.AllotRoom(context.Background(), "APP000000001", rn)
		assert.ErrorIs(t, err, domain.ErrInvalid)
	}

	a, err := repo.GetApplication(context.Background(), "APP000000001")
	require.NoError(t, err)
	assert.Nil(t, a.RoomAllotted)
	assert.Equal(t, 1, a.Version)
	r, err := repo.GetRoomByNumber(context.Background(), "A-101")
	require.NoError(t, err)
	assert.Equal(t, 0, r.OccupiedCount)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestAllotmentService_AllotAndReleasePublish(t *testing.T) {
	repo := repository.NewMemoryHostelRepo()
	seedApproved(t, repo, "APP000000001", "Asha")
	seedRoom(t, repo, "A-101", 1)

	events := &MockAllotmentEvents{}
	events.On("Publish", mock.Anything, mock.MatchedBy(func(ev domain.AllotmentEvent) bool {
		return ev.Type == domain.EventAllotted && ev.RoomNumber == "A-101" && ev.OccupiedCount == 1 && ev.StudentName == "Asha"
	})).Return(nil).Once()
	events.On("Publish", mock.Anything, mock.MatchedBy(func(ev domain.AllotmentEvent) bool {
		return ev.Type == domain.EventReleased && ev.RoomNumber == "A-101" && ev.OccupiedCount == 0
	})).Return(errors.New("redis down")).Once()

	svc := NewAllotmentService(repo, events, zap.NewNop())
	a, r, err := svc.AllotRoom(context.Background(), "APP000000001", " A-101 ")
	require.NoError(t, err)
	assert.Equal(t, "A-101", *a.RoomAllotted)
	assert.Equal(t, domain.RoomFull, r.Status)

	// a failing publish does not undo the release
	a, r, err = svc.ReleaseRoom(context.Background(), "APP000000001")
	require.NoError(t, err)
	assert.Nil(t, a.RoomAllotted)
	assert.Equal(t, domain.RoomAvailable, r.Status)

	events.AssertExpectations(t)
}

func TestAllotmentService_ConcurrentLastBed(t *testing.T) {
	repo := repository.NewMemoryHostelRepo()
	seedRoom(t, repo, "A-101", 2)
	const n = 10
	for i := 0; i < n; i++ {
		seedApproved(t, repo, fmt.Sprintf("APP%09d", i), "Student")
	}
	svc := NewAllotmentService(repo, nil, zap.NewNop())

	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, results[i] = svc.AllotRoom(context.Background(), fmt.Sprintf("APP%09d", i), "A-101")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrConflict)
	}
	assert.Equal(t, 2, ok)

	r, err := repo.GetRoomByNumber(context.Background(), "A-101")
	require.NoError(t, err)
	assert.Equal(t, r.Capacity, r.OccupiedCount)
	assert.Equal(t, domain.RoomFull, r.Status)
}

func TestAllotmentService_HistoryLimit(t *testing.T) {
	events := &MockAllotmentEvents{}
	records := []AllotmentRecord{{ID: "1-0", AllotmentEvent: domain.AllotmentEvent{Type: domain.EventAllotted, At: time.Now()}}}
	events.On("Recent", mock.Anything, defaultHistoryLimit).Return(records, nil).Once()
	events.On("Recent", mock.Anything, maxHistoryLimit).Return(records, nil).Once()
	events.On("Recent", mock.Anything, 7).Return(records, nil).Once()

	svc := NewAllotmentService(repository.NewMemoryHostelRepo(), events, zap.NewNop())
	for _, limit := range []int{0, 10000, 7} {
		got, err := svc.History(context.Background(), limit)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	events.AssertExpectations(t)
}

func TestAllotmentService_Audit(t *testing.T) {
	repo := repository.NewMemoryHostelRepo()
	seedApproved(t, repo, "APP000000001", "Asha")
	seedRoom(t, repo, "A-101", 2)
	svc := NewAllotmentService(repo, nil, zap.NewNop())
	_, _, err := svc.AllotRoom(context.Background(), "APP000000001", "A-101")
	require.NoError(t, err)

	rows, err := svc.Audit(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Consistent())
	assert.Equal(t, 1, rows[0].Allotted)
}
