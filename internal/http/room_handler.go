package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/service"

	"go.uber.org/zap"
)

// RoomHandler serves the room inventory.
type RoomHandler struct {
	rooms  service.RoomService
	logger *zap.Logger
}

func NewRoomHandler(rooms service.RoomService, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, logger: logger}
}

type createRoomRequest struct {
	RoomNumber string  `json:"roomNumber" validate:"required,max=20"`
	Capacity   flexInt `json:"capacity" validate:"min=1,max=12"`
	Type       string  `json:"type" validate:"required,oneof=Single Double Triple Quad"`
	Status     string  `json:"status" validate:"omitempty,oneof=Available Maintenance"`
}

type updateRoomRequest struct {
	Status   *string  `json:"status" validate:"omitempty,oneof=Available Full Maintenance"`
	Capacity *flexInt `json:"capacity" validate:"omitempty,min=1,max=12"`
	Type     *string  `json:"type" validate:"omitempty,oneof=Single Double Triple Quad"`
	Version  *flexInt `json:"version"`
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.rooms.List(r.Context(), domain.RoomStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if !decode(w, r, h.logger, &req) {
		return
	}
	room, err := h.rooms.Create(r.Context(), service.CreateRoomRequest{
		RoomNumber: req.RoomNumber,
		Capacity:   int(req.Capacity),
		Type:       domain.RoomType(req.Type),
		Status:     domain.RoomStatus(req.Status),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	setETag(w, room.Version)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": fmt.Sprintf("Room %s added", room.RoomNumber),
		"room":    room,
	})
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRoomRequest
	if !decode(w, r, h.logger, &req) {
		return
	}
	version, err := expectedVersion(r, req.Version)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var patch domain.RoomPatch
	if req.Status != nil {
		s := domain.RoomStatus(*req.Status)
		patch.Status = &s
	}
	if req.Type != nil {
		t := domain.RoomType(*req.Type)
		patch.Type = &t
	}
	patch.Capacity = req.Capacity.intPtr()
	if patch.Status == nil && patch.Type == nil && patch.Capacity == nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: nothing to update (send status, capacity or type)", domain.ErrInvalid))
		return
	}

	room, err := h.rooms.Update(r.Context(), service.UpdateRoomRequest{ID: r.PathValue("id"), Patch: patch, Version: version})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	setETag(w, room.Version)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Room %s updated", room.RoomNumber),
		"room":    room,
	})
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.rooms.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Room deleted")
}

// Export streams the occupancy sheet as XLSX.
func (h *RoomHandler) Export(w http.ResponseWriter, r *http.Request) {
	list, err := h.rooms.List(r.Context(), "")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	data, err := GenerateRoomOccupancyExport(list)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeXLSX(w, fmt.Sprintf("room-occupancy-%s.xlsx", time.Now().UTC().Format("20060102")), data)
}
