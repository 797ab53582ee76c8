package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/service"

	"go.uber.org/zap"
)

// FeeHandler serves the admin fee ledger.
type FeeHandler struct {
	fees   service.FeeService
	logger *zap.Logger
}

func NewFeeHandler(fees service.FeeService, logger *zap.Logger) *FeeHandler {
	return &FeeHandler{fees: fees, logger: logger}
}

// feeRecord is the ledger view of an application.
type feeRecord struct {
	ID                string           `json:"_id"`
	Name              string           `json:"name"`
	ApplicationNumber string           `json:"applicationNumber"`
	Email             string           `json:"email"`
	Branch            string           `json:"branch"`
	RoomAllotted      *string          `json:"roomAllotted"`
	FeeStatus         domain.FeeStatus `json:"feeStatus"`
	MessFeePerMonth   int              `json:"messFeePerMonth"`
	MonthsDue         int              `json:"monthsDue"`
	FeeAmountDue      int              `json:"feeAmountDue"`
	FeeDueDate        *time.Time       `json:"feeDueDate"`
	IsOverdue         bool             `json:"isOverdue"`
	Version           int              `json:"version"`
}

func newFeeRecord(a *domain.Application) feeRecord {
	return feeRecord{
		ID:                a.ID,
		Name:              a.Name,
		ApplicationNumber: a.ApplicationNumber,
		Email:             a.Email,
		Branch:            a.Branch,
		RoomAllotted:      a.RoomAllotted,
		FeeStatus:         a.FeeStatus,
		MessFeePerMonth:   a.MessFeePerMonth,
		MonthsDue:         a.MonthsDue,
		FeeAmountDue:      a.FeeAmountDue,
		FeeDueDate:        a.FeeDueDate,
		IsOverdue:         a.IsOverdue,
		Version:           a.Version,
	}
}

type feeUpdateRequest struct {
	MonthsDue       *flexInt `json:"monthsDue"`
	FeeStatus       *string  `json:"feeStatus"`
	MessFeePerMonth *flexInt `json:"messFeePerMonth"`
	Version         *flexInt `json:"version"`
}

func (h *FeeHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.fees.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]feeRecord, 0, len(list))
	for _, a := range list {
		out = append(out, newFeeRecord(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *FeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.fees.Get(r.Context(), r.PathValue("appNo"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	setETag(w, a.Version)
	writeJSON(w, http.StatusOK, newFeeRecord(a))
}

// Update applies a ledger edit. The record is echoed under both "fee" and
// "student"; the portal merges data.student into its table.
func (h *FeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req feeUpdateRequest
	if !decode(w, r, h.logger, &req) {
		return
	}
	version, err := expectedVersion(r, req.Version)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	upd := domain.FeeUpdate{
		MonthsDue:       req.MonthsDue.intPtr(),
		MessFeePerMonth: req.MessFeePerMonth.intPtr(),
	}
	if req.FeeStatus != nil {
		s := domain.FeeStatus(*req.FeeStatus)
		upd.FeeStatus = &s
	}

	a, changed, err := h.fees.Update(r.Context(), service.UpdateFeeRequest{
		ApplicationNumber: r.PathValue("appNo"),
		Update:            upd,
		Version:           version,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	msg := fmt.Sprintf("Fee record for %s updated", a.ApplicationNumber)
	if !changed {
		msg = fmt.Sprintf("Fee record for %s already up to date", a.ApplicationNumber)
	}
	rec := newFeeRecord(a)
	setETag(w, a.Version)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": msg,
		"fee":     rec,
		"student": rec,
	})
}

// Export streams the fee ledger as XLSX.
func (h *FeeHandler) Export(w http.ResponseWriter, r *http.Request) {
	list, err := h.fees.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	data, err := GenerateFeeLedgerExport(list, time.Now())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeXLSX(w, fmt.Sprintf("fee-ledger-%s.xlsx", time.Now().UTC().Format("20060102")), data)
}
