package repository

import (
	"context"
	"testing"
	"time"

	"hostel-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryComplaints_StatusCAS(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryComplaintsRepo()
	c := &domain.Complaint{ApplicationNumber: "APP000000001", Subject: "Fan", Details: "Broken"}
	require.NoError(t, repo.CreateComplaint(ctx, c))
	assert.Equal(t, domain.ComplaintPending, c.Status)

	updated, err := repo.UpdateComplaintStatus(ctx, c.ID, domain.ComplaintPending, domain.ComplaintInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintInProgress, updated.Status)

	_, err = repo.UpdateComplaintStatus(ctx, c.ID, domain.ComplaintPending, domain.ComplaintResolved)
	assert.ErrorIs(t, err, domain.ErrVersionMismatch)

	_, err = repo.UpdateComplaintStatus(ctx, "missing", domain.ComplaintPending, domain.ComplaintResolved)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryComplaints_ListByStudent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryComplaintsRepo()
	require.NoError(t, repo.CreateComplaint(ctx, &domain.Complaint{ApplicationNumber: "A1", Subject: "x"}))
	require.NoError(t, repo.CreateComplaint(ctx, &domain.Complaint{ApplicationNumber: "A2", Subject: "y"}))
	require.NoError(t, repo.CreateComplaint(ctx, &domain.Complaint{ApplicationNumber: "A1", Subject: "z"}))

	mine, err := repo.ListComplaints(ctx, "A1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := repo.ListComplaints(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryNotices_ActiveNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryNoticesRepo()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	old := &domain.Notice{Title: "old", IsActive: true}
	hidden := &domain.Notice{Title: "hidden", IsActive: false}
	fresh := &domain.Notice{Title: "fresh", IsActive: true}
	for _, n := range []*domain.Notice{old, hidden, fresh} {
		require.NoError(t, repo.CreateNotice(ctx, n))
	}

	active, err := repo.ListNotices(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "fresh", active[0].Title)
	assert.Equal(t, "old", active[1].Title)

	hidden.IsActive = true
	require.NoError(t, repo.UpdateNotice(ctx, hidden))
	active, err = repo.ListNotices(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	require.NoError(t, repo.DeleteNotice(ctx, old.ID))
	assert.ErrorIs(t, repo.DeleteNotice(ctx, old.ID), domain.ErrNotFound)
}

func TestMemoryAdmins_Uniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAdminsRepo()
	require.NoError(t, repo.CreateAdmin(ctx, &domain.Admin{AdminID: "warden1", Email: "warden@example.com"}))

	exists, err := repo.AdminExists(ctx, "WARDEN@example.com", "other")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.AdminExists(ctx, "new@example.com", "warden1")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.CreateAdmin(ctx, &domain.Admin{AdminID: "warden2", Email: "warden@example.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := repo.GetAdminByEmail(ctx, "Warden@Example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	_, err = repo.GetAdminByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
