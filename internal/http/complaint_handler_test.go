package httpapi

import (
	"context"
	"net/http"
	"testing"

	"hostel-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type complaintBody struct {
	Message   string           `json:"message"`
	Complaint domain.Complaint `json:"complaint"`
}

func TestComplaints_FileAndResolve(t *testing.T) {
	f := newFixture(t)
	admin := f.adminToken(t)
	f.seedApplication(t, domain.Application{Name: "Asha", ApplicationNumber: "202400000001"})
	f.seedApplication(t, domain.Application{Name: "Ravi", ApplicationNumber: "202400000002"})
	f.seedRoom(t, "A-101", 2)
	_, _, err := f.hostel.AllotRoom(context.Background(), "202400000001", "A-101")
	require.NoError(t, err)
	asha := f.studentToken(t, "202400000001")
	ravi := f.studentToken(t, "202400000002")

	// Identity fields in the body are ignored in favour of the token.
	rec := f.do(t, http.MethodPost, "/api/student/complaints", asha, map[string]string{
		"applicationNumber": "202400000002",
		"studentName":       "Someone Else",
		"subject":           "Leaking tap",
		"details":           "The bathroom tap drips all night.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	filed := decodeJSON[complaintBody](t, rec).Complaint
	assert.Equal(t, "202400000001", filed.ApplicationNumber)
	assert.Equal(t, "Asha", filed.StudentName)
	assert.Equal(t, "A-101", filed.RoomAllotted)
	assert.Equal(t, "General", filed.Category)
	assert.Equal(t, domain.ComplaintPending, filed.Status)

	rec = f.do(t, http.MethodPost, "/api/student/complaints", ravi, map[string]string{
		"category": "Mess", "subject": "Cold food", "details": "Dinner is served cold.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "N/A", decodeJSON[complaintBody](t, rec).Complaint.RoomAllotted)

	rec = f.do(t, http.MethodPost, "/api/student/complaints", ravi, map[string]string{"subject": "No details"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "details is required", messageOf(t, rec))

	rec = f.do(t, http.MethodPost, "/api/student/complaints", admin, map[string]string{"subject": "x", "details": "y"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/student/complaints", asha, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decodeJSON[[]domain.Complaint](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, filed.ID, mine[0].ID)

	path := "/api/hostel/complaints/" + filed.ID + "/status"
	rec = f.do(t, http.MethodPatch, path, admin, map[string]string{"status": "In Progress"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeJSON[complaintBody](t, rec)
	assert.Equal(t, "Complaint marked In Progress", updated.Message)
	assert.Equal(t, domain.ComplaintInProgress, updated.Complaint.Status)

	rec = f.do(t, http.MethodPatch, path, admin, map[string]string{"status": "Pending"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPatch, path, admin, map[string]string{"status": "Closed"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, path, admin, map[string]string{"status": "Resolved"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPatch, path, admin, map[string]string{"status": "Resolved"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/hostel/complaints", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decodeJSON[[]domain.Complaint](t, rec)
	require.Len(t, all, 2)
	assert.Equal(t, domain.ComplaintPending, all[0].Status)
	assert.Equal(t, domain.ComplaintResolved, all[1].Status)
}
