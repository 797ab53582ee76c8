package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/service"

	"go.uber.org/zap"
)

// ApplicationHandler serves the admin application views, allotment and
// student profiles.
type ApplicationHandler struct {
	apps      service.ApplicationService
	allotment service.AllotmentService
	logger    *zap.Logger
}

func NewApplicationHandler(apps service.ApplicationService, allotment service.AllotmentService, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{apps: apps, allotment: allotment, logger: logger}
}

type statusUpdateRequest struct {
	Status  string   `json:"status" validate:"required"`
	Version *flexInt `json:"version"`
}

type allotRoomRequest struct {
	RoomNumber string `json:"roomNumber"`
}

// List handles GET /hostel/applications?sort=&branch=&gender=&status=&unhoused=.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	order, err := service.ParseSortOrder(q.Get("sort"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	status := domain.ApplicationStatus(strings.ToLower(strings.TrimSpace(q.Get("status"))))
	if status != "" && !status.Valid() {
		writeError(w, r, h.logger, fmt.Errorf("%w: unknown status %q", domain.ErrInvalid, status))
		return
	}
	list, err := h.apps.List(r.Context(), service.ApplicationQuery{
		Sort:     order,
		Branch:   q.Get("branch"),
		Gender:   q.Get("gender"),
		Status:   status,
		Unhoused: queryBool(r, "unhoused"),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.apps.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	setETag(w, a.Version)
	writeJSON(w, http.StatusOK, a)
}

// Profile serves GET /student/profile/{id}, where id is the record id or the
// application number. Students see only their own.
func (h *ApplicationHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	a, err := h.apps.Profile(r.Context(), r.PathValue("id"))
	if err != nil {
		if claims != nil && claims.Role == domain.RoleStudent && errors.Is(err, domain.ErrNotFound) {
			err = fmt.Errorf("%w: students may only view their own profile", domain.ErrForbidden)
		}
		writeError(w, r, h.logger, err)
		return
	}
	if claims != nil && claims.Role == domain.RoleStudent && claims.Subject != a.ApplicationNumber {
		writeError(w, r, h.logger, fmt.Errorf("%w: students may only view their own profile", domain.ErrForbidden))
		return
	}
	setETag(w, a.Version)
	writeJSON(w, http.StatusOK, a)
}

func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if !decode(w, r, h.logger, &req) {
		return
	}
	version, err := expectedVersion(r, req.Version)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	a, err := h.apps.UpdateStatus(r.Context(), service.UpdateStatusRequest{
		ApplicationNumber: r.PathValue("id"),
		Status:            domain.ApplicationStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		Version:           version,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	setETag(w, a.Version)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     fmt.Sprintf("Application %s %s", a.ApplicationNumber, a.Status),
		"application": a,
	})
}

func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.apps.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("Application %s deleted", id))
}

// RemoveStudent handles DELETE /hostel/students/{id}, freeing the bed.
func (h *ApplicationHandler) RemoveStudent(w http.ResponseWriter, r *http.Request) {
	a, err := h.apps.RemoveStudent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("Student %s (%s) removed", a.Name, a.ApplicationNumber))
}

func (h *ApplicationHandler) AllotRoom(w http.ResponseWriter, r *http.Request) {
	var req allotRoomRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	a, room, err := h.allotment.AllotRoom(r.Context(), r.PathValue("id"), req.RoomNumber)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     fmt.Sprintf("Room %s allotted to %s", room.RoomNumber, a.ApplicationNumber),
		"application": a,
		"room":        room,
	})
}

func (h *ApplicationHandler) ReleaseRoom(w http.ResponseWriter, r *http.Request) {
	a, room, err := h.allotment.ReleaseRoom(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     fmt.Sprintf("%s vacated room %s", a.ApplicationNumber, room.RoomNumber),
		"application": a,
		"room":        room,
	})
}

// History handles GET /hostel/allotments/history?limit=N.
func (h *ApplicationHandler) History(w http.ResponseWriter, r *http.Request) {
	recs, err := h.allotment.History(r.Context(), parseInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

type auditRow struct {
	RoomNumber    string `json:"roomNumber"`
	Capacity      int    `json:"capacity"`
	OccupiedCount int    `json:"occupiedCount"`
	Allotted      int    `json:"allotted"`
	Consistent    bool   `json:"consistent"`
}

// Audit handles GET /hostel/rooms/audit.
func (h *ApplicationHandler) Audit(w http.ResponseWriter, r *http.Request) {
	rows, err := h.allotment.Audit(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]auditRow, 0, len(rows))
	consistent := true
	for _, row := range rows {
		ok := row.Consistent()
		consistent = consistent && ok
		out = append(out, auditRow{
			RoomNumber:    row.RoomNumber,
			Capacity:      row.Capacity,
			OccupiedCount: row.OccupiedCount,
			Allotted:      row.Allotted,
			Consistent:    ok,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"consistent": consistent,
		"rooms":      out,
	})
}
