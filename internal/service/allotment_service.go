package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/repository"

	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// AllotmentService assigns approved applicants to rooms.
type AllotmentService interface {
	AllotRoom(ctx context.Context, applicationNumber, roomNumber string) (*domain.Application, *domain.Room, error)
	ReleaseRoom(ctx context.Context, applicationNumber string) (*domain.Application, *domain.Room, error)
	History(ctx context.Context, limit int) ([]AllotmentRecord, error)
	Audit(ctx context.Context) ([]repository.OccupancyRow, error)
}

type allotmentService struct {
	repo   repository.AllotmentRepository
	events AllotmentEvents
	logger *zap.Logger
	now    func() time.Time
}

func NewAllotmentService(repo repository.AllotmentRepository, events AllotmentEvents, logger *zap.Logger) AllotmentService {
	if events == nil {
		events = nopAllotmentEvents{}
	}
	return &allotmentService{repo: repo, events: events, logger: logger, now: time.Now}
}

// AllotRoom rejects an empty room number before touching storage.
func (s *allotmentService) AllotRoom(ctx context.Context, applicationNumber, roomNumber string) (*domain.Application, *domain.Room, error) {
	roomNumber = strings.TrimSpace(roomNumber)
	if roomNumber == "" {
		return nil, nil, fmt.Errorf("%w: roomNumber is required", domain.ErrInvalid)
	}
	a, r, err := s.repo.AllotRoom(ctx, applicationNumber, roomNumber)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("Room allotted",
		zap.String("application_number", applicationNumber),
		zap.String("room_number", roomNumber),
		zap.Int("occupied_count", r.OccupiedCount),
		zap.Int("capacity", r.Capacity),
	)
	now := s.now()
	publishAllotment(ctx, s.events, s.logger, domain.EventAllotted, a, r, now)
	a.RefreshDerived(now)
	return a, r, nil
}

func (s *allotmentService) ReleaseRoom(ctx context.Context, applicationNumber string) (*domain.Application, *domain.Room, error) {
	a, r, err := s.repo.ReleaseRoom(ctx, applicationNumber)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("Room released",
		zap.String("application_number", applicationNumber),
		zap.String("room_number", r.RoomNumber),
	)
	now := s.now()
	publishAllotment(ctx, s.events, s.logger, domain.EventReleased, a, r, now)
	a.RefreshDerived(now)
	return a, r, nil
}

func (s *allotmentService) History(ctx context.Context, limit int) ([]AllotmentRecord, error) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	return s.events.Recent(ctx, limit)
}

func (s *allotmentService) Audit(ctx context.Context) ([]repository.OccupancyRow, error) {
	rows, err := s.repo.AuditOccupancy(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit occupancy: %w", err)
	}
	for _, r := range rows {
		if !r.Consistent() {
			s.logger.Warn("Room occupancy drift",
				zap.String("room_number", r.RoomNumber),
				zap.Int("occupied_count", r.OccupiedCount),
				zap.Int("allotted", r.Allotted),
				zap.Int("capacity", r.Capacity),
			)
		}
	}
	return rows, nil
}
