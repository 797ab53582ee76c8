package domain

import (
	"fmt"
	"sort"
	"time"
)

type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "Pending"
	ComplaintInProgress ComplaintStatus = "In Progress"
	ComplaintResolved   ComplaintStatus = "Resolved"
)

// complaintOrder is the fixed list order: Pending, In Progress, Resolved.
var complaintOrder = map[ComplaintStatus]int{
	ComplaintPending:    1,
	ComplaintInProgress: 2,
	ComplaintResolved:   3,
}

func (s ComplaintStatus) Valid() bool {
	_, ok := complaintOrder[s]
	return ok
}

// CanTransitionTo allows Pending→In Progress, Pending→Resolved and
// In Progress→Resolved. Nothing returns to Pending.
func (s ComplaintStatus) CanTransitionTo(to ComplaintStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown complaint status %q", ErrInvalid, to)
	}
	if complaintOrder[to] <= complaintOrder[s] {
		return fmt.Errorf("%w: complaint cannot move from %s to %s", ErrConflict, s, to)
	}
	return nil
}

type Complaint struct {
	ID                string          `json:"_id"`
	StudentID         string          `json:"studentId"`
	StudentName       string          `json:"studentName"`
	ApplicationNumber string          `json:"applicationNumber"`
	RoomAllotted      string          `json:"roomAllotted"`
	Category          string          `json:"category"`
	Subject           string          `json:"subject"`
	Details           string          `json:"details"`
	Status            ComplaintStatus `json:"status"`
	FiledAt           time.Time       `json:"filedAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// SortComplaints orders by status (Pending, In Progress, Resolved) and,
// within a status, newest first. The sort is stable.
func SortComplaints(list []*Complaint) {
	sort.SliceStable(list, func(i, j int) bool {
		oi, oj := complaintOrder[list[i].Status], complaintOrder[list[j].Status]
		if oi != oj {
			return oi < oj
		}
		return list[i].FiledAt.After(list[j].FiledAt)
	})
}
