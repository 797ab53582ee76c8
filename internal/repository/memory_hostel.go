package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"hostel-portal/internal/domain"

	"github.com/google/uuid"
)

// MemoryHostelRepo keeps applications and rooms in process memory. It is used
// when DB_ENABLED=false and in tests. One lock covers both collections so
// allotment is atomic exactly like the PostgreSQL transaction.
type MemoryHostelRepo struct {
	mu sync.RWMutex

	apps     map[string]*domain.Application // applicationNumber -> application
	appOrder []string

	rooms    map[string]*domain.Room // id -> room
	roomByNo map[string]string       // roomNumber -> id

	now func() time.Time
}

func NewMemoryHostelRepo() *MemoryHostelRepo {
	return &MemoryHostelRepo{
		apps:     map[string]*domain.Application{},
		rooms:    map[string]*domain.Room{},
		roomByNo: map[string]string{},
		now:      time.Now,
	}
}

func cloneApp(a *domain.Application) *domain.Application {
	c := *a
	if a.RoomAllotted != nil {
		r := *a.RoomAllotted
		c.RoomAllotted = &r
	}
	if a.FeeDueDate != nil {
		d := *a.FeeDueDate
		c.FeeDueDate = &d
	}
	return &c
}

func cloneRoom(r *domain.Room) *domain.Room {
	c := *r
	return &c
}

// ---- applications ----

func (m *MemoryHostelRepo) CreateApplication(_ context.Context, a *domain.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.apps[a.ApplicationNumber]; ok {
		return fmt.Errorf("%w: application number %s is already registered", domain.ErrConflict, a.ApplicationNumber)
	}
	for _, existing := range m.apps {
		if strings.EqualFold(existing.Email, a.Email) {
			return fmt.Errorf("%w: email %s is already registered", domain.ErrConflict, a.Email)
		}
	}
	now := m.now().UTC()
	a.ID = uuid.NewString()
	a.Version = 1
	a.CreatedAt = now
	a.UpdatedAt = now
	m.apps[a.ApplicationNumber] = cloneApp(a)
	m.appOrder = append(m.appOrder, a.ApplicationNumber)
	return nil
}

func (m *MemoryHostelRepo) GetApplication(_ context.Context, applicationNumber string) (*domain.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.apps[applicationNumber]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", applicationNumber, domain.ErrNotFound)
	}
	return cloneApp(a), nil
}

func (m *MemoryHostelRepo) GetApplicationByID(_ context.Context, id string) (*domain.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.apps {
		if a.ID == id {
			return cloneApp(a), nil
		}
	}
	return nil, fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
}

func (m *MemoryHostelRepo) ListApplications(_ context.Context, f ApplicationFilter) ([]*domain.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Application, 0, len(m.appOrder))
	for _, no := range m.appOrder {
		a := m.apps[no]
		if f.match(a) {
			out = append(out, cloneApp(a))
		}
	}
	return out, nil
}

func (m *MemoryHostelRepo) UpdateApplication(_ context.Context, a *domain.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.apps[a.ApplicationNumber]
	if !ok {
		return fmt.Errorf("application %s: %w", a.ApplicationNumber, domain.ErrNotFound)
	}
	if cur.Version != a.Version {
		return fmt.Errorf("application %s: %w", a.ApplicationNumber, domain.ErrVersionMismatch)
	}
	next := cloneApp(a)
	next.RoomAllotted = cur.RoomAllotted
	next.PasswordHash = cur.PasswordHash
	next.Version = cur.Version + 1
	next.UpdatedAt = m.now().UTC()
	m.apps[a.ApplicationNumber] = next

	a.Version = next.Version
	a.UpdatedAt = next.UpdatedAt
	a.RoomAllotted = cloneApp(next).RoomAllotted
	return nil
}

func (m *MemoryHostelRepo) DeleteApplication(_ context.Context, applicationNumber string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[applicationNumber]
	if !ok {
		return fmt.Errorf("application %s: %w", applicationNumber, domain.ErrNotFound)
	}
	if a.Housed() {
		return fmt.Errorf("%w: application %s holds room %s", domain.ErrConflict, applicationNumber, *a.RoomAllotted)
	}
	m.deleteAppLocked(applicationNumber)
	return nil
}

func (m *MemoryHostelRepo) deleteAppLocked(applicationNumber string) {
	delete(m.apps, applicationNumber)
	for i, no := range m.appOrder {
		if no == applicationNumber {
			m.appOrder = append(m.appOrder[:i], m.appOrder[i+1:]...)
			break
		}
	}
}

// ---- rooms ----

func (m *MemoryHostelRepo) CreateRoom(_ context.Context, r *domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roomByNo[r.RoomNumber]; ok {
		return fmt.Errorf("%w: room %s already exists", domain.ErrConflict, r.RoomNumber)
	}
	now := m.now().UTC()
	r.ID = uuid.NewString()
	r.Version = 1
	r.CreatedAt = now
	r.UpdatedAt = now
	m.rooms[r.ID] = cloneRoom(r)
	m.roomByNo[r.RoomNumber] = r.ID
	return nil
}

func (m *MemoryHostelRepo) GetRoom(_ context.Context, id string) (*domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, domain.ErrNotFound)
	}
	return cloneRoom(r), nil
}

func (m *MemoryHostelRepo) GetRoomByNumber(_ context.Context, roomNumber string) (*domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.roomByNo[roomNumber]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", roomNumber, domain.ErrNotFound)
	}
	return cloneRoom(m.rooms[id]), nil
}

func (m *MemoryHostelRepo) ListRooms(_ context.Context, status domain.RoomStatus) ([]*domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, cloneRoom(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNumber < out[j].RoomNumber })
	return out, nil
}

func (m *MemoryHostelRepo) UpdateRoom(_ context.Context, r *domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rooms[r.ID]
	if !ok {
		return fmt.Errorf("room %s: %w", r.ID, domain.ErrNotFound)
	}
	if cur.Version != r.Version {
		return fmt.Errorf("room %s: %w", cur.RoomNumber, domain.ErrVersionMismatch)
	}
	next := cloneRoom(cur)
	next.Capacity = r.Capacity
	next.Type = r.Type
	next.Status = r.Status
	if err := next.Validate(); err != nil {
		return err
	}
	next.Version++
	next.UpdatedAt = m.now().UTC()
	m.rooms[r.ID] = next
	*r = *cloneRoom(next)
	return nil
}

func (m *MemoryHostelRepo) DeleteRoom(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return fmt.Errorf("room %s: %w", id, domain.ErrNotFound)
	}
	if r.OccupiedCount > 0 {
		return fmt.Errorf("%w: room %s is occupied by %d student(s)", domain.ErrConflict, r.RoomNumber, r.OccupiedCount)
	}
	delete(m.rooms, id)
	delete(m.roomByNo, r.RoomNumber)
	return nil
}

// ---- allotment ----

func (m *MemoryHostelRepo) AllotRoom(_ context.Context, applicationNumber, roomNumber string) (*domain.Application, *domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.apps[applicationNumber]
	if !ok {
		return nil, nil, fmt.Errorf("application %s: %w", applicationNumber, domain.ErrNotFound)
	}
	if err := checkAllottable(a); err != nil {
		return nil, nil, err
	}
	id, ok := m.roomByNo[roomNumber]
	if !ok {
		return nil, nil, fmt.Errorf("room %s: %w", roomNumber, domain.ErrNotFound)
	}

	room := cloneRoom(m.rooms[id])
	if err := room.Occupy(); err != nil {
		return nil, nil, err
	}
	now := m.now().UTC()
	room.Version++
	room.UpdatedAt = now

	app := cloneApp(a)
	rn := roomNumber
	app.RoomAllotted = &rn
	app.Version++
	app.UpdatedAt = now

	m.rooms[id] = room
	m.apps[applicationNumber] = app
	return cloneApp(app), cloneRoom(room), nil
}

func (m *MemoryHostelRepo) ReleaseRoom(_ context.Context, applicationNumber string) (*domain.Application, *domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.apps[applicationNumber]
	if !ok {
		return nil, nil, fmt.Errorf("application %s: %w", applicationNumber, domain.ErrNotFound)
	}
	if !a.Housed() {
		return nil, nil, fmt.Errorf("%w: application %s holds no room", domain.ErrConflict, applicationNumber)
	}
	app, room := m.releaseLocked(a)
	return cloneApp(app), cloneRoom(room), nil
}

func (m *MemoryHostelRepo) RemoveStudent(_ context.Context, applicationNumber string) (*domain.Application, *domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.apps[applicationNumber]
	if !ok {
		return nil, nil, fmt.Errorf("application %s: %w", applicationNumber, domain.ErrNotFound)
	}
	var room *domain.Room
	if a.Housed() {
		var app *domain.Application
		app, room = m.releaseLocked(a)
		a = app
		room = cloneRoom(room)
	}
	removed := cloneApp(a)
	m.deleteAppLocked(applicationNumber)
	return removed, room, nil
}

// releaseLocked frees a's bed. The room may have been deleted out of band; in
// that case only the application is cleared and the returned room is a stub.
func (m *MemoryHostelRepo) releaseLocked(a *domain.Application) (*domain.Application, *domain.Room) {
	now := m.now().UTC()
	roomNumber := *a.RoomAllotted

	room := &domain.Room{RoomNumber: roomNumber}
	if id, ok := m.roomByNo[roomNumber]; ok {
		room = cloneRoom(m.rooms[id])
		room.Release()
		room.Version++
		room.UpdatedAt = now
		m.rooms[id] = room
	}

	app := cloneApp(a)
	app.RoomAllotted = nil
	app.Version++
	app.UpdatedAt = now
	m.apps[a.ApplicationNumber] = app
	return app, room
}

func (m *MemoryHostelRepo) AuditOccupancy(_ context.Context) ([]OccupancyRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	allotted := map[string]int{}
	for _, a := range m.apps {
		if a.Housed() {
			allotted[*a.RoomAllotted]++
		}
	}
	rows := make([]OccupancyRow, 0, len(m.rooms))
	for _, r := range m.rooms {
		rows = append(rows, OccupancyRow{
			RoomNumber:    r.RoomNumber,
			Capacity:      r.Capacity,
			OccupiedCount: r.OccupiedCount,
			Allotted:      allotted[r.RoomNumber],
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].RoomNumber < rows[j].RoomNumber })
	return rows, nil
}

// checkAllottable enforces the application-side preconditions of allotment.
func checkAllottable(a *domain.Application) error {
	if a.Status != domain.ApplicationApproved {
		return fmt.Errorf("%w: application %s is %s, only approved applications can be allotted", domain.ErrConflict, a.ApplicationNumber, a.Status)
	}
	if a.Housed() {
		return fmt.Errorf("%w: application %s already holds room %s", domain.ErrConflict, a.ApplicationNumber, *a.RoomAllotted)
	}
	return nil
}
