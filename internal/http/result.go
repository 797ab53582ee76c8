package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"hostel-portal/internal/domain"

	"go.uber.org/zap"
)

// MessageResponse is the body of every error and of bare acknowledgements.
// The portal shows message verbatim in a toast.
type MessageResponse struct {
	Message string `json:"message"`
}

var sentinels = []struct {
	err    error
	status int
}{
	{domain.ErrInvalid, http.StatusBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrVersionMismatch, http.StatusPreconditionFailed},
	{domain.ErrConflict, http.StatusConflict},
}

func statusFor(err error) int {
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// publicMessage drops the sentinel prefix ("conflict: room A-101 is full"
// becomes "room A-101 is full").
func publicMessage(err error) string {
	msg := err.Error()
	if errors.Is(err, domain.ErrVersionMismatch) {
		msg = strings.Replace(msg, ": "+domain.ErrVersionMismatch.Error(), " was modified concurrently", 1)
		return msg + "; reload and try again"
	}
	for _, s := range sentinels {
		if !errors.Is(err, s.err) {
			continue
		}
		prefix := s.err.Error() + ": "
		if i := strings.Index(msg, prefix); i >= 0 {
			return msg[i+len(prefix):]
		}
		return msg
	}
	return msg
}

func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := statusFor(err)
	msg := publicMessage(err)
	switch {
	case status == http.StatusServiceUnavailable:
		logger.Warn("Request timed out", zap.String("path", r.URL.Path), zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		msg = "request timed out"
	case status >= 500:
		logger.Error("Request failed", zap.String("path", r.URL.Path), zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		msg = "internal server error"
	}
	writeJSON(w, status, MessageResponse{Message: msg})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageResponse{Message: msg})
}
