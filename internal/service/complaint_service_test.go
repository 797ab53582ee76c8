package service

import (
	"context"
	"testing"
	"time"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestComplaintService_FileUsesStudentRecord(t *testing.T) {
	repo := repository.NewMemoryHostelRepo()
	seedApproved(t, repo, "APP000000001", "Asha")
	svc := NewComplaintService(repository.NewMemoryComplaintsRepo(), repo, zap.NewNop())

	c, err := svc.File(context.Background(), FileComplaintRequest{ApplicationNumber: "APP000000001", Subject: " Fan ", Details: "Not working"})
	require.NoError(t, err)
	assert.Equal(t, "Asha", c.StudentName)
	assert.Equal(t, "N/A", c.RoomAllotted)
	assert.Equal(t, "General", c.Category)
	assert.Equal(t, "Fan", c.Subject)
	assert.Equal(t, domain.ComplaintPending, c.Status)

	_, err = svc.File(context.Background(), FileComplaintRequest{ApplicationNumber: "APP000000001", Subject: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestComplaintService_OrderAfterStatusChanges(t *testing.T) {
	repo := repository.NewMemoryHostelRepo()
	seedApproved(t, repo, "APP000000001", "Asha")
	complaints := repository.NewMemoryComplaintsRepo()
	svc := NewComplaintService(complaints, repo, zap.NewNop())
	ctx := context.Background()

	var ids []string
	for i, subject := range []string{"Fan", "Water", "Wifi", "Door"} {
		c := &domain.Complaint{ApplicationNumber: "APP000000001", Subject: subject, FiledAt: time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC)}
		require.NoError(t, complaints.CreateComplaint(ctx, c))
		ids = append(ids, c.ID)
	}

	_, err := svc.UpdateStatus(ctx, ids[0], domain.ComplaintResolved)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, ids[2], domain.ComplaintInProgress)
	require.NoError(t, err)

	list, err := svc.ListAll(ctx)
	require.NoError(t, err)
	var subjects []string
	for i, c := range list {
		subjects = append(subjects, c.Subject)
		if i > 0 {
			assert.LessOrEqual(t, statusRank(list[i-1].Status), statusRank(c.Status))
		}
	}
	assert.Equal(t, []string{"Door", "Water", "Wifi", "Fan"}, subjects)

	mine, err := svc.ListForStudent(ctx, "APP000000001")
	require.NoError(t, err)
	assert.Len(t, mine, 4)
}

func statusRank(s domain.ComplaintStatus) int {
	switch s {
	case domain.ComplaintPending:
		return 1
	case domain.ComplaintInProgress:
		return 2
	}
	return 3
}

func TestComplaintService_InvalidTransitions(t *testing.T) {
	complaints := repository.NewMemoryComplaintsRepo()
	svc := NewComplaintService(complaints, repository.NewMemoryHostelRepo(), zap.NewNop())
	ctx := context.Background()
	c := &domain.Complaint{Subject: "Fan"}
	require.NoError(t, complaints.CreateComplaint(ctx, c))

	_, err := svc.UpdateStatus(ctx, c.ID, domain.ComplaintResolved)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, c.ID, domain.ComplaintPending)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = svc.UpdateStatus(ctx, c.ID, domain.ComplaintInProgress)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = svc.UpdateStatus(ctx, c.ID, "Closed")
	assert.ErrorIs(t, err, domain.ErrInvalid)
	_, err = svc.UpdateStatus(ctx, "missing", domain.ComplaintResolved)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
