package domain

import "time"

// Allotment event types published on the events stream.
const (
	EventAllotted = "allotted"
	EventReleased = "released"
)

// AllotmentEvent records a bed being taken or given back.
type AllotmentEvent struct {
	Type              string    `json:"type"`
	ApplicationNumber string    `json:"applicationNumber"`
	StudentName       string    `json:"studentName"`
	RoomNumber        string    `json:"roomNumber"`
	OccupiedCount     int       `json:"occupiedCount"`
	Capacity          int       `json:"capacity"`
	At                time.Time `json:"at"`
}
