package httpapi

import (
	"net/http"
	"testing"

	"hostel-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noticeBody struct {
	Message string        `json:"message"`
	Notice  domain.Notice `json:"notice"`
}

func TestNotices(t *testing.T) {
	f := newFixture(t)
	admin := f.adminToken(t)

	rec := f.do(t, http.MethodPost, "/api/notices", admin, map[string]string{"title": "Water outage", "content": "No water 10am-2pm on Sunday."})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decodeJSON[noticeBody](t, rec).Notice
	assert.True(t, first.IsActive)

	rec = f.do(t, http.MethodPost, "/api/notices", admin, map[string]string{"title": "Mess timings", "content": "Dinner moves to 8pm."})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/notices", admin, map[string]string{"title": "No body"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/notices", f.studentToken(t, "202400000001"), map[string]string{"title": "t", "content": "c"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/notices/"+first.ID, admin, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/notices/"+first.ID, admin, map[string]any{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/notices/"+first.ID, admin, map[string]any{"isActive": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decodeJSON[noticeBody](t, rec).Notice.IsActive)

	// The notice board is public.
	rec = f.do(t, http.MethodGet, "/api/notices", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSON[[]domain.Notice](t, rec), 2)

	rec = f.do(t, http.MethodGet, "/api/notices?activeOnly=true", "", nil)
	active := decodeJSON[[]domain.Notice](t, rec)
	require.Len(t, active, 1)
	assert.Equal(t, "Mess timings", active[0].Title)

	rec = f.do(t, http.MethodDelete, "/api/notices/"+first.ID, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodDelete, "/api/notices/"+first.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
