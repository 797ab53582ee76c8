package httpapi

import (
	"fmt"
	"net/http"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/service"

	"go.uber.org/zap"
)

type NoticeHandler struct {
	notices service.NoticeService
	logger  *zap.Logger
}

func NewNoticeHandler(notices service.NoticeService, logger *zap.Logger) *NoticeHandler {
	return &NoticeHandler{notices: notices, logger: logger}
}

type createNoticeRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=10000"`
}

type updateNoticeRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content  *string `json:"content" validate:"omitempty,min=1,max=10000"`
	IsActive *bool   `json:"isActive"`
}

// List is public; ?activeOnly=true hides withdrawn notices.
func (h *NoticeHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.notices.List(r.Context(), queryBool(r, "activeOnly"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *NoticeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createNoticeRequest
	if !decode(w, r, h.logger, &req) {
		return
	}
	n, err := h.notices.Create(r.Context(), req.Title, req.Content)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Notice published",
		"notice":  n,
	})
}

func (h *NoticeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateNoticeRequest
	if !decode(w, r, h.logger, &req) {
		return
	}
	if req.Title == nil && req.Content == nil && req.IsActive == nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: nothing to update (send title, content or isActive)", domain.ErrInvalid))
		return
	}
	n, err := h.notices.Update(r.Context(), r.PathValue("id"), domain.NoticePatch{
		Title:    req.Title,
		Content:  req.Content,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Notice updated",
		"notice":  n,
	})
}

func (h *NoticeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.notices.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Notice deleted")
}
