package domain

import (
	"fmt"
	"time"
)

type RoomType string

const (
	RoomSingle RoomType = "Single"
	RoomDouble RoomType = "Double"
	RoomTriple RoomType = "Triple"
	RoomQuad   RoomType = "Quad"
)

func (t RoomType) Valid() bool {
	switch t {
	case RoomSingle, RoomDouble, RoomTriple, RoomQuad:
		return true
	}
	return false
}

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "Available"
	RoomFull        RoomStatus = "Full"
	RoomMaintenance RoomStatus = "Maintenance"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomFull, RoomMaintenance:
		return true
	}
	return false
}

// Room is one hostel room. OccupiedCount is maintained by allotment and
// release; it never leaves [0, Capacity].
type Room struct {
	ID            string     `json:"_id"`
	RoomNumber    string     `json:"roomNumber"`
	Capacity      int        `json:"capacity"`
	Type          RoomType   `json:"type"`
	Status        RoomStatus `json:"status"`
	OccupiedCount int        `json:"occupiedCount"`
	Version       int        `json:"version"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Validate checks the fields an admin controls.
func (r *Room) Validate() error {
	if r.RoomNumber == "" {
		return fmt.Errorf("%w: roomNumber is required", ErrInvalid)
	}
	if r.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrInvalid)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: unknown room type %q", ErrInvalid, r.Type)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: unknown room status %q", ErrInvalid, r.Status)
	}
	if r.OccupiedCount < 0 || r.OccupiedCount > r.Capacity {
		return fmt.Errorf("%w: occupancy %d outside capacity %d", ErrConflict, r.OccupiedCount, r.Capacity)
	}
	if r.Status == RoomAvailable && r.OccupiedCount >= r.Capacity {
		return fmt.Errorf("%w: room %s is at capacity and cannot be Available", ErrConflict, r.RoomNumber)
	}
	return nil
}

// FreeBeds is the remaining capacity.
func (r *Room) FreeBeds() int {
	return r.Capacity - r.OccupiedCount
}

// CanAllot reports why a bed cannot be taken, or nil.
func (r *Room) CanAllot() error {
	if r.Status != RoomAvailable {
		return fmt.Errorf("%w: room %s is %s", ErrConflict, r.RoomNumber, r.Status)
	}
	if r.OccupiedCount >= r.Capacity {
		return fmt.Errorf("%w: room %s is full", ErrConflict, r.RoomNumber)
	}
	return nil
}

// Occupy takes one bed and marks the room Full when it reaches capacity.
func (r *Room) Occupy() error {
	if err := r.CanAllot(); err != nil {
		return err
	}
	r.OccupiedCount++
	if r.OccupiedCount >= r.Capacity {
		r.Status = RoomFull
	}
	return nil
}

// Release frees one bed. A Full room becomes Available again; Maintenance is
// left untouched.
func (r *Room) Release() {
	if r.OccupiedCount > 0 {
		r.OccupiedCount--
	}
	if r.Status == RoomFull && r.OccupiedCount < r.Capacity {
		r.Status = RoomAvailable
	}
}

// RoomPatch is a partial admin edit. Nil fields are left unchanged.
type RoomPatch struct {
	Status   *RoomStatus
	Capacity *int
	Type     *RoomType
}

// Apply edits r in place and re-validates it. A capacity change on an
// Available/Full room re-derives the status from occupancy.
func (r *Room) Apply(p RoomPatch) error {
	if p.Capacity != nil {
		if *p.Capacity < r.OccupiedCount {
			return fmt.Errorf("%w: capacity %d is below current occupancy %d", ErrConflict, *p.Capacity, r.OccupiedCount)
		}
		r.Capacity = *p.Capacity
		if p.Status == nil && r.Status != RoomMaintenance {
			if r.OccupiedCount >= r.Capacity {
				r.Status = RoomFull
			} else {
				r.Status = RoomAvailable
			}
		}
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	return r.Validate()
}
