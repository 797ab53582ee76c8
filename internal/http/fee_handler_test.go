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

type feeBody struct {
	Message string    `json:"message"`
	Fee     feeRecord `json:"fee"`
	Student feeRecord `json:"student"`
}

func TestFees_Ledger(t *testing.T) {
	f := newFixture(t)
	admin := f.adminToken(t)
	f.seedApplication(t, domain.Application{Name: "Asha", ApplicationNumber: "202400000001"})
	f.seedApplication(t, domain.Application{Name: "Ravi", ApplicationNumber: "202400000002", Status: domain.ApplicationPending})
	f.seedRoom(t, "A-101", 2)
	_, _, err := f.hostel.AllotRoom(context.Background(), "202400000001", "A-101")
	require.NoError(t, err)
	path := "/api/hostel/fees/202400000001"

	rec := f.do(t, http.MethodGet, "/api/hostel/fees", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeJSON[[]feeRecord](t, rec)
	require.Len(t, list, 1, "only approved applications have a ledger")
	assert.Equal(t, "202400000001", list[0].ApplicationNumber)
	require.NotNil(t, list[0].RoomAllotted)

	rec = f.do(t, http.MethodGet, "/api/hostel/fees/202400000002", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPatch, path, admin, map[string]any{"monthsDue": "2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON[feeBody](t, rec)
	assert.Equal(t, 2, body.Fee.MonthsDue)
	assert.Equal(t, 7000, body.Fee.FeeAmountDue)
	assert.Equal(t, domain.FeePending, body.Fee.FeeStatus)
	require.NotNil(t, body.Fee.FeeDueDate)
	assert.False(t, body.Fee.IsOverdue)
	assert.Equal(t, body.Fee, body.Student)
	version := body.Fee.Version

	rec = f.do(t, http.MethodPatch, path, admin, map[string]any{"messFeePerMonth": 4000, "version": version})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeJSON[feeBody](t, rec)
	assert.Equal(t, 8000, body.Fee.FeeAmountDue)

	rec = f.do(t, http.MethodPatch, path, admin, map[string]any{"feeStatus": "Paid", "version": version})
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	rec = f.do(t, http.MethodPatch, path, admin, map[string]any{"feeStatus": "Paid"})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeJSON[feeBody](t, rec)
	assert.Equal(t, domain.FeePaid, body.Fee.FeeStatus)
	assert.Equal(t, 0, body.Fee.MonthsDue)
	assert.Equal(t, 0, body.Fee.FeeAmountDue)
	assert.Nil(t, body.Fee.FeeDueDate)
	assert.Equal(t, strconv.Quote(strconv.Itoa(body.Fee.Version)), rec.Header().Get("ETag"))

	rec = f.do(t, http.MethodPatch, path, admin, map[string]any{"feeStatus": "Paid"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, messageOf(t, rec), "already up to date")

	for _, bad := range []map[string]any{
		{},
		{"monthsDue": -1},
		{"messFeePerMonth": 0},
		{"feeStatus": "Waived"},
		{"feeStatus": "Paid", "monthsDue": 3},
		{"monthsDue": "two"},
	} {
		rec = f.do(t, http.MethodPatch, path, admin, bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestFees_BlankMonthsDueKeepsBalance(t *testing.T) {
	f := newFixture(t)
	admin := f.adminToken(t)
	f.seedApplication(t, domain.Application{Name: "Asha", ApplicationNumber: "202400000001"})
	path := "/api/hostel/fees/202400000001"

	rec := f.do(t, http.MethodPatch, path, admin, map[string]any{"monthsDue": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 10500, decodeJSON[feeBody](t, rec).Fee.FeeAmountDue)

	for _, blank := range []string{"", "  "} {
		rec = f.do(t, http.MethodPatch, path, admin, map[string]any{"monthsDue": blank})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, messageOf(t, rec), "whole number")
	}

	rec = f.do(t, http.MethodPatch, path, admin, map[string]any{"monthsDue": 1, "version": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, path, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fee := decodeJSON[feeRecord](t, rec)
	assert.Equal(t, 3, fee.MonthsDue)
	assert.Equal(t, 10500, fee.FeeAmountDue)
	assert.NotNil(t, fee.FeeDueDate)

	// null is treated as not sent.
	rec = f.do(t, http.MethodPatch, path, admin, map[string]any{"monthsDue": 2, "version": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 7000, decodeJSON[feeBody](t, rec).Fee.FeeAmountDue)
}
