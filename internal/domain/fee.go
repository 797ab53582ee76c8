package domain

import (
	"fmt"
	"time"
)

type FeeStatus string

const (
	FeePending FeeStatus = "Pending"
	FeePaid    FeeStatus = "Paid"
)

func (s FeeStatus) Valid() bool {
	return s == FeePending || s == FeePaid
}

// ComputeFee is the total owed for monthsDue months of mess fees.
func ComputeFee(monthsDue, messFeePerMonth int) int {
	if monthsDue <= 0 || messFeePerMonth <= 0 {
		return 0
	}
	return monthsDue * messFeePerMonth
}

// DueDate is the payment deadline for a ledger edited at now: dueDays after
// the start of now's UTC day.
func DueDate(now time.Time, dueDays int) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, dueDays)
}

// FeeUpdate is an admin edit of the fee ledger. Nil fields are unchanged.
type FeeUpdate struct {
	MonthsDue       *int
	FeeStatus       *FeeStatus
	MessFeePerMonth *int
}

// Empty reports whether the update touches nothing.
func (u FeeUpdate) Empty() bool {
	return u.MonthsDue == nil && u.FeeStatus == nil && u.MessFeePerMonth == nil
}

// ApplyFeeUpdate edits the ledger fields of a in place and reports whether
// anything changed.
//
//   - Paid clears the balance (monthsDue 0, amount 0, no due date); marking a
//     Paid record Paid again is a no-op.
//   - A positive monthsDue reopens the record as Pending with a fresh due date.
//   - The amount is always re-derived from monthsDue × messFeePerMonth.
func ApplyFeeUpdate(a *Application, u FeeUpdate, now time.Time, dueDays int) (bool, error) {
	if u.Empty() {
		return false, fmt.Errorf("%w: nothing to update", ErrInvalid)
	}
	if u.MonthsDue != nil && *u.MonthsDue < 0 {
		return false, fmt.Errorf("%w: monthsDue must be a non-negative integer", ErrInvalid)
	}
	if u.MessFeePerMonth != nil && *u.MessFeePerMonth <= 0 {
		return false, fmt.Errorf("%w: messFeePerMonth must be positive", ErrInvalid)
	}
	if u.FeeStatus != nil && !u.FeeStatus.Valid() {
		return false, fmt.Errorf("%w: unknown fee status %q", ErrInvalid, *u.FeeStatus)
	}
	if u.FeeStatus != nil && *u.FeeStatus == FeePaid && u.MonthsDue != nil && *u.MonthsDue > 0 {
		return false, fmt.Errorf("%w: cannot mark Paid while setting months due", ErrInvalid)
	}

	before := *a

	if u.MessFeePerMonth != nil {
		a.MessFeePerMonth = *u.MessFeePerMonth
	}

	switch {
	case u.FeeStatus != nil && *u.FeeStatus == FeePaid:
		a.FeeStatus = FeePaid
		a.MonthsDue = 0
		a.FeeDueDate = nil
	case u.MonthsDue != nil:
		if *u.MonthsDue != a.MonthsDue || a.FeeDueDate == nil {
			a.MonthsDue = *u.MonthsDue
			if a.MonthsDue > 0 {
				due := DueDate(now, dueDays)
				a.FeeDueDate = &due
			} else {
				a.FeeDueDate = nil
			}
		}
		if a.MonthsDue > 0 {
			a.FeeStatus = FeePending
		} else if u.FeeStatus != nil {
			a.FeeStatus = *u.FeeStatus
		}
	case u.FeeStatus != nil:
		a.FeeStatus = *u.FeeStatus
	}

	a.FeeAmountDue = ComputeFee(a.MonthsDue, a.MessFeePerMonth)
	a.RefreshDerived(now)

	changed := before.FeeStatus != a.FeeStatus ||
		before.MonthsDue != a.MonthsDue ||
		before.FeeAmountDue != a.FeeAmountDue ||
		before.MessFeePerMonth != a.MessFeePerMonth ||
		!sameTime(before.FeeDueDate, a.FeeDueDate)
	return changed, nil
}

// AccrueMonth adds one month of mess fees to a housed student's ledger.
func AccrueMonth(a *Application, now time.Time, dueDays int) {
	a.MonthsDue++
	a.FeeStatus = FeePending
	due := DueDate(now, dueDays)
	a.FeeDueDate = &due
	a.FeeAmountDue = ComputeFee(a.MonthsDue, a.MessFeePerMonth)
	a.RefreshDerived(now)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
