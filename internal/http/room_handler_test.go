package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"hostel-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roomBody struct {
	Message string      `json:"message"`
	Room    domain.Room `json:"room"`
}

func TestRooms_CreateListDelete(t *testing.T) {
	f := newFixture(t)
	admin := f.adminToken(t)

	rec := f.do(t, http.MethodPost, "/api/hostel/rooms", admin, `{"roomNumber":"B-12","capacity":"3","type":"Triple"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeJSON[roomBody](t, rec)
	assert.Equal(t, 3, created.Room.Capacity)
	assert.Equal(t, domain.RoomAvailable, created.Room.Status)
	assert.Equal(t, 0, created.Room.OccupiedCount)
	assert.Equal(t, `"1"`, rec.Header().Get("ETag"))

	rec = f.do(t, http.MethodPost, "/api/hostel/rooms", admin, map[string]any{"roomNumber": "A-01", "capacity": 1, "type": "Single", "status": "Maintenance"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/hostel/rooms", admin, map[string]any{"roomNumber": "B-12", "capacity": 2, "type": "Double"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	for _, body := range []map[string]any{
		{"roomNumber": "C-1", "capacity": 0, "type": "Single"},
		{"roomNumber": "C-1", "capacity": 2, "type": "Dorm"},
		{"roomNumber": "C-1", "capacity": 2, "type": "Double", "status": "Full"},
		{"capacity": 2, "type": "Double"},
	} {
		rec = f.do(t, http.MethodPost, "/api/hostel/rooms", admin, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec = f.do(t, http.MethodGet, "/api/hostel/rooms", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeJSON[[]domain.Room](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "A-01", list[0].RoomNumber)

	rec = f.do(t, http.MethodGet, "/api/hostel/rooms?status=Maintenance", admin, nil)
	assert.Len(t, decodeJSON[[]domain.Room](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/hostel/rooms?status=Closed", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/hostel/rooms/"+created.Room.ID, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodDelete, "/api/hostel/rooms/"+created.Room.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRooms_Update(t *testing.T) {
	f := newFixture(t)
	admin := f.adminToken(t)
	room := f.seedRoom(t, "A-101", 2)
	f.seedApplication(t, domain.Application{Name: "Asha", ApplicationNumber: "202400000001"})
	_, _, err := f.hostel.AllotRoom(context.Background(), "202400000001", "A-101")
	require.NoError(t, err)
	path := "/api/hostel/rooms/" + room.ID

	rec := f.do(t, http.MethodPatch, path, admin, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, messageOf(t, rec), "nothing to update")

	rec = f.do(t, http.MethodPatch, path, admin, map[string]any{"capacity": "1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeJSON[roomBody](t, rec)
	assert.Equal(t, 1, updated.Room.Capacity)
	assert.Equal(t, domain.RoomFull, updated.Room.Status)
	assert.Equal(t, 1, updated.Room.OccupiedCount)
	version := updated.Room.Version

	rec = f.do(t, http.MethodPatch, path, admin, map[string]any{"capacity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, path, admin, map[string]any{"status": "Available"})
	assert.Equal(t, http.StatusConflict, rec.Code, "a full room cannot be Available")

	rec = f.do(t, http.MethodPatch, path, admin, map[string]any{"status": "Maintenance", "version": version - 1})
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	rec = f.do(t, http.MethodPatch, path, admin, map[string]any{"capacity": 3, "type": "Triple"}, "If-Match", `W/"`+strconv.Itoa(version)+`"`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated = decodeJSON[roomBody](t, rec)
	assert.Equal(t, domain.RoomAvailable, updated.Room.Status)
	assert.Equal(t, domain.RoomTriple, updated.Room.Type)

	rec = f.do(t, http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "an occupied room cannot be deleted")
}

func TestRooms_MaintenanceBlocksAllotment(t *testing.T) {
	f := newFixture(t)
	admin := f.adminToken(t)
	room := f.seedRoom(t, "A-101", 2)
	f.seedApplication(t, domain.Application{Name: "Asha", ApplicationNumber: "202400000001"})

	rec := f.do(t, http.MethodPatch, "/api/hostel/rooms/"+room.ID, admin, map[string]any{"status": "Maintenance"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/hostel/applications/202400000001/allot-room", admin, map[string]string{"roomNumber": "A-101"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, messageOf(t, rec), "Maintenance")
}
