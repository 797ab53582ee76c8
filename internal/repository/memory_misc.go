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

type MemoryComplaintsRepo struct {
	mu    sync.RWMutex
	items map[string]*domain.Complaint
	now   func() time.Time
}

func NewMemoryComplaintsRepo() *MemoryComplaintsRepo {
	return &MemoryComplaintsRepo{items: map[string]*domain.Complaint{}, now: time.Now}
}

func (m *MemoryComplaintsRepo) CreateComplaint(_ context.Context, c *domain.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	c.ID = uuid.NewString()
	if c.Status == "" {
		c.Status = domain.ComplaintPending
	}
	if c.FiledAt.IsZero() {
		c.FiledAt = now
	}
	c.UpdatedAt = now
	cp := *c
	m.items[c.ID] = &cp
	return nil
}

func (m *MemoryComplaintsRepo) GetComplaint(_ context.Context, id string) (*domain.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("complaint %s: %w", id, domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryComplaintsRepo) ListComplaints(_ context.Context, applicationNumber string) ([]*domain.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Complaint, 0, len(m.items))
	for _, c := range m.items {
		if applicationNumber != "" && c.ApplicationNumber != applicationNumber {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryComplaintsRepo) UpdateComplaintStatus(_ context.Context, id string, from, to domain.ComplaintStatus) (*domain.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("complaint %s: %w", id, domain.ErrNotFound)
	}
	if c.Status != from {
		return nil, fmt.Errorf("complaint %s: %w", id, domain.ErrVersionMismatch)
	}
	c.Status = to
	c.UpdatedAt = m.now().UTC()
	cp := *c
	return &cp, nil
}

type MemoryNoticesRepo struct {
	mu    sync.RWMutex
	items map[string]*domain.Notice
	now   func() time.Time
}

func NewMemoryNoticesRepo() *MemoryNoticesRepo {
	return &MemoryNoticesRepo{items: map[string]*domain.Notice{}, now: time.Now}
}

func (m *MemoryNoticesRepo) CreateNotice(_ context.Context, n *domain.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	n.ID = uuid.NewString()
	n.CreatedAt = now
	n.UpdatedAt = now
	cp := *n
	m.items[n.ID] = &cp
	return nil
}

func (m *MemoryNoticesRepo) GetNotice(_ context.Context, id string) (*domain.Notice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("notice %s: %w", id, domain.ErrNotFound)
	}
	cp := *n
	return &cp, nil
}

func (m *MemoryNoticesRepo) ListNotices(_ context.Context, activeOnly bool) ([]*domain.Notice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Notice, 0, len(m.items))
	for _, n := range m.items {
		if activeOnly && !n.IsActive {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryNoticesRepo) UpdateNotice(_ context.Context, n *domain.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[n.ID]
	if !ok {
		return fmt.Errorf("notice %s: %w", n.ID, domain.ErrNotFound)
	}
	cur.Title = n.Title
	cur.Content = n.Content
	cur.IsActive = n.IsActive
	cur.UpdatedAt = m.now().UTC()
	*n = *cur
	return nil
}

func (m *MemoryNoticesRepo) DeleteNotice(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("notice %s: %w", id, domain.ErrNotFound)
	}
	delete(m.items, id)
	return nil
}

type MemoryAdminsRepo struct {
	mu    sync.RWMutex
	items map[string]*domain.Admin
	now   func() time.Time
}

func NewMemoryAdminsRepo() *MemoryAdminsRepo {
	return &MemoryAdminsRepo{items: map[string]*domain.Admin{}, now: time.Now}
}

func (m *MemoryAdminsRepo) CreateAdmin(_ context.Context, a *domain.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsLocked(a.Email, a.AdminID) {
		return fmt.Errorf("%w: admin %s already registered", domain.ErrConflict, a.Email)
	}
	a.ID = uuid.NewString()
	if a.Role == "" {
		a.Role = domain.RoleAdmin
	}
	a.CreatedAt = m.now().UTC()
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *MemoryAdminsRepo) GetAdmin(_ context.Context, id string) (*domain.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("admin %s: %w", id, domain.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryAdminsRepo) GetAdminByEmail(_ context.Context, email string) (*domain.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.items {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("admin %s: %w", email, domain.ErrNotFound)
}

func (m *MemoryAdminsRepo) AdminExists(_ context.Context, email, adminID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.existsLocked(email, adminID), nil
}

func (m *MemoryAdminsRepo) existsLocked(email, adminID string) bool {
	for _, a := range m.items {
		if strings.EqualFold(a.Email, email) || (adminID != "" && a.AdminID == adminID) {
			return true
		}
	}
	return false
}
