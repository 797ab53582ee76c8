package service

import (
	"context"
	"errors"
	"testing"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNoticeService_BroadcastOnCreateAndActivate(t *testing.T) {
	b := &MockBroadcaster{}
	b.On("Broadcast", mock.MatchedBy(func(n *domain.Notice) bool { return n.Title == "Water cut" })).Return(nil).Twice()
	svc := NewNoticeService(repository.NewMemoryNoticesRepo(), b, zap.NewNop())
	ctx := context.Background()

	n, err := svc.Create(ctx, " Water cut ", "No water 10-12")
	require.NoError(t, err)
	assert.True(t, n.IsActive)
	assert.Equal(t, "Water cut", n.Title)

	off := false
	_, err = svc.Update(ctx, n.ID, domain.NoticePatch{IsActive: &off})
	require.NoError(t, err)

	on := true
	n, err = svc.Update(ctx, n.ID, domain.NoticePatch{IsActive: &on})
	require.NoError(t, err)
	assert.True(t, n.IsActive)

	content := "Updated text"
	_, err = svc.Update(ctx, n.ID, domain.NoticePatch{Content: &content})
	require.NoError(t, err)

	b.AssertExpectations(t)
	b.AssertNumberOfCalls(t, "Broadcast", 2)
}

func TestNoticeService_Validation(t *testing.T) {
	svc := NewNoticeService(repository.NewMemoryNoticesRepo(), nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, "", "body")
	assert.ErrorIs(t, err, domain.ErrInvalid)

	n, err := svc.Create(ctx, "Title", "Body")
	require.NoError(t, err)
	empty := "  "
	_, err = svc.Update(ctx, n.ID, domain.NoticePatch{Title: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	assert.ErrorIs(t, svc.Delete(ctx, "missing"), domain.ErrNotFound)
}

func TestNoticeService_BroadcastFailureIsNotFatal(t *testing.T) {
	b := &MockBroadcaster{}
	b.On("Broadcast", mock.Anything).Return(errors.New("broker offline"))
	svc := NewNoticeService(repository.NewMemoryNoticesRepo(), b, zap.NewNop())

	n, err := svc.Create(context.Background(), "Title", "Body")
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
}
