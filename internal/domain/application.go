package domain

import (
	"fmt"
	"time"
)

// ApplicationStatus is the admin review state of a hostel application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

// Application is a student's hostel application. It doubles as the student
// account (login by ApplicationNumber) and carries the fee ledger fields.
type Application struct {
	ID                string            `json:"_id"`
	Name              string            `json:"name"`
	ApplicationNumber string            `json:"applicationNumber"`
	Email             string            `json:"email"`
	DOB               string            `json:"dob"`
	Year              int               `json:"year"`
	Branch            string            `json:"branch"`
	Gender            string            `json:"gender"`
	Distance          int               `json:"distance"`
	Rank              int               `json:"rank"`
	CounselingRound   int               `json:"counselingRound"`
	Status            ApplicationStatus `json:"status"`
	RoomAllotted      *string           `json:"roomAllotted"`

	FeeStatus       FeeStatus  `json:"feeStatus"`
	MessFeePerMonth int        `json:"messFeePerMonth"`
	MonthsDue       int        `json:"monthsDue"`
	FeeAmountDue    int        `json:"feeAmountDue"`
	FeeDueDate      *time.Time `json:"feeDueDate"`
	IsOverdue       bool       `json:"isOverdue"`

	PasswordHash string    `json:"-"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Housed reports whether a room has been allotted.
func (a *Application) Housed() bool {
	return a.RoomAllotted != nil && *a.RoomAllotted != ""
}

// RefreshDerived recomputes read-only fields that depend on the clock.
func (a *Application) RefreshDerived(now time.Time) {
	a.IsOverdue = a.FeeStatus != FeePaid && a.FeeDueDate != nil && a.FeeDueDate.Before(now)
}

// CheckStatusTransition validates an admin review decision.
// pending may become approved or rejected; an approved application may still
// be rejected as long as it holds no room. Same-state updates are no-ops.
func (a *Application) CheckStatusTransition(to ApplicationStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown application status %q", ErrInvalid, to)
	}
	if a.Status == to {
		return nil
	}
	switch {
	case a.Status == ApplicationPending && (to == ApplicationApproved || to == ApplicationRejected):
		return nil
	case a.Status == ApplicationApproved && to == ApplicationRejected:
		if a.Housed() {
			return fmt.Errorf("%w: application %s holds room %s; release it first", ErrConflict, a.ApplicationNumber, *a.RoomAllotted)
		}
		return nil
	}
	return fmt.Errorf("%w: cannot move application from %s to %s", ErrConflict, a.Status, to)
}
