package httpapi

import (
	"net/http"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/service"

	"go.uber.org/zap"
)

type ComplaintHandler struct {
	complaints service.ComplaintService
	logger     *zap.Logger
}

func NewComplaintHandler(complaints service.ComplaintService, logger *zap.Logger) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints, logger: logger}
}

type fileComplaintRequest struct {
	Category string `json:"category" validate:"omitempty,max=50"`
	Subject  string `json:"subject" validate:"required,max=200"`
	Details  string `json:"details" validate:"required,max=4000"`
}

type complaintStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// File records a complaint for the student in the session token. Any
// identity fields in the body are ignored.
func (h *ComplaintHandler) File(w http.ResponseWriter, r *http.Request) {
	var req fileComplaintRequest
	if !decode(w, r, h.logger, &req) {
		return
	}
	claims, _ := ClaimsFrom(r.Context())
	c, err := h.complaints.File(r.Context(), service.FileComplaintRequest{
		ApplicationNumber: claims.Subject,
		Category:          req.Category,
		Subject:           req.Subject,
		Details:           req.Details,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Complaint filed successfully",
		"complaint": c,
	})
}

func (h *ComplaintHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	list, err := h.complaints.ListForStudent(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ComplaintHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.complaints.ListAll(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ComplaintHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req complaintStatusRequest
	if !decode(w, r, h.logger, &req) {
		return
	}
	c, err := h.complaints.UpdateStatus(r.Context(), r.PathValue("id"), domain.ComplaintStatus(req.Status))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Complaint marked " + string(c.Status),
		"complaint": c,
	})
}
