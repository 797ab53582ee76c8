package repository

import (
	"context"

	"hostel-portal/internal/domain"
)

// ApplicationFilter narrows ListApplications. Zero values match everything.
type ApplicationFilter struct {
	Status     domain.ApplicationStatus
	HousedOnly bool
	Unhoused   bool
}

func (f ApplicationFilter) match(a *domain.Application) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.HousedOnly && !a.Housed() {
		return false
	}
	if f.Unhoused && a.Housed() {
		return false
	}
	return true
}

// ApplicationsRepository stores applications (student accounts + fee ledger).
// Lists are returned in creation order.
type ApplicationsRepository interface {
	CreateApplication(ctx context.Context, a *domain.Application) error
	GetApplication(ctx context.Context, applicationNumber string) (*domain.Application, error)
	// GetApplicationByID looks up by record id (the portal's _id).
	GetApplicationByID(ctx context.Context, id string) (*domain.Application, error)
	ListApplications(ctx context.Context, f ApplicationFilter) ([]*domain.Application, error)
	// UpdateApplication persists status and fee fields if the stored version
	// still equals a.Version, then bumps a.Version. RoomAllotted is owned by
	// AllotmentRepository and is not written here.
	UpdateApplication(ctx context.Context, a *domain.Application) error
	// DeleteApplication removes an unhoused application.
	DeleteApplication(ctx context.Context, applicationNumber string) error
}

// RoomsRepository stores the room inventory. Lists are ordered by room number.
type RoomsRepository interface {
	CreateRoom(ctx context.Context, r *domain.Room) error
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
	GetRoomByNumber(ctx context.Context, roomNumber string) (*domain.Room, error)
	ListRooms(ctx context.Context, status domain.RoomStatus) ([]*domain.Room, error)
	// UpdateRoom persists capacity, type and status with a version check.
	UpdateRoom(ctx context.Context, r *domain.Room) error
	// DeleteRoom removes an unoccupied room.
	DeleteRoom(ctx context.Context, id string) error
}

// OccupancyRow compares a room's stored occupancy with the applications
// that actually reference it.
type OccupancyRow struct {
	RoomNumber    string `json:"roomNumber"`
	Capacity      int    `json:"capacity"`
	OccupiedCount int    `json:"occupiedCount"`
	Allotted      int    `json:"allotted"`
}

// Consistent reports whether the stored count matches reality.
func (r OccupancyRow) Consistent() bool {
	return r.OccupiedCount == r.Allotted && r.Allotted <= r.Capacity
}

// AllotmentRepository changes an application and a room atomically.
type AllotmentRepository interface {
	// AllotRoom gives the application one bed in the room. The application
	// must be approved and unhoused; the room must be Available with a free bed.
	AllotRoom(ctx context.Context, applicationNumber, roomNumber string) (*domain.Application, *domain.Room, error)
	// ReleaseRoom takes the application out of its room.
	ReleaseRoom(ctx context.Context, applicationNumber string) (*domain.Application, *domain.Room, error)
	// RemoveStudent deletes the application, releasing its bed first. The
	// returned room is nil when the student was unhoused.
	RemoveStudent(ctx context.Context, applicationNumber string) (*domain.Application, *domain.Room, error)
	AuditOccupancy(ctx context.Context) ([]OccupancyRow, error)
}

// ComplaintsRepository stores complaints. Lists are unordered; callers sort
// with domain.SortComplaints.
type ComplaintsRepository interface {
	CreateComplaint(ctx context.Context, c *domain.Complaint) error
	GetComplaint(ctx context.Context, id string) (*domain.Complaint, error)
	// ListComplaints returns all complaints, or one student's when
	// applicationNumber is non-empty.
	ListComplaints(ctx context.Context, applicationNumber string) ([]*domain.Complaint, error)
	// UpdateComplaintStatus moves a complaint from one status to another;
	// it fails with ErrVersionMismatch if the status is no longer from.
	UpdateComplaintStatus(ctx context.Context, id string, from, to domain.ComplaintStatus) (*domain.Complaint, error)
}

// NoticesRepository stores notices, newest first.
type NoticesRepository interface {
	CreateNotice(ctx context.Context, n *domain.Notice) error
	GetNotice(ctx context.Context, id string) (*domain.Notice, error)
	ListNotices(ctx context.Context, activeOnly bool) ([]*domain.Notice, error)
	UpdateNotice(ctx context.Context, n *domain.Notice) error
	DeleteNotice(ctx context.Context, id string) error
}

// AdminsRepository stores verified admin accounts.
type AdminsRepository interface {
	CreateAdmin(ctx context.Context, a *domain.Admin) error
	GetAdmin(ctx context.Context, id string) (*domain.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error)
	AdminExists(ctx context.Context, email, adminID string) (bool, error)
}
