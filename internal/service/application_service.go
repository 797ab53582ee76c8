package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/repository"

	"go.uber.org/zap"
)

// ApplicationService is the admin review workflow.
type ApplicationService interface {
	List(ctx context.Context, q ApplicationQuery) ([]*domain.Application, error)
	Get(ctx context.Context, applicationNumber string) (*domain.Application, error)
	// Profile resolves ref as an application number or a record id.
	Profile(ctx context.Context, ref string) (*domain.Application, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*domain.Application, error)
	// Delete removes an application that holds no room.
	Delete(ctx context.Context, applicationNumber string) error
	// RemoveStudent deletes a student, releasing their bed.
	RemoveStudent(ctx context.Context, applicationNumber string) (*domain.Application, error)
}

type UpdateStatusRequest struct {
	ApplicationNumber string
	Status            domain.ApplicationStatus
	Version           *int // optional If-Match
}

type applicationService struct {
	apps      repository.ApplicationsRepository
	allotment repository.AllotmentRepository
	events    AllotmentEvents
	logger    *zap.Logger
	now       func() time.Time
}

func NewApplicationService(apps repository.ApplicationsRepository, allotment repository.AllotmentRepository, events AllotmentEvents, logger *zap.Logger) ApplicationService {
	if events == nil {
		events = nopAllotmentEvents{}
	}
	return &applicationService{apps: apps, allotment: allotment, events: events, logger: logger, now: time.Now}
}

func (s *applicationService) List(ctx context.Context, q ApplicationQuery) ([]*domain.Application, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalid, q.Status)
	}
	list, err := s.apps.ListApplications(ctx, repository.ApplicationFilter{Status: q.Status, Unhoused: q.Unhoused})
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	list = FilterApplications(list, q)
	SortApplications(list, q.Sort)
	now := s.now()
	for _, a := range list {
		a.RefreshDerived(now)
	}
	return list, nil
}

func (s *applicationService) Get(ctx context.Context, applicationNumber string) (*domain.Application, error) {
	a, err := s.apps.GetApplication(ctx, applicationNumber)
	if err != nil {
		return nil, err
	}
	a.RefreshDerived(s.now())
	return a, nil
}

func (s *applicationService) Profile(ctx context.Context, ref string) (*domain.Application, error) {
	a, err := s.apps.GetApplication(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		a, err = s.apps.GetApplicationByID(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	a.RefreshDerived(s.now())
	return a, nil
}

func (s *applicationService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*domain.Application, error) {
	a, err := s.apps.GetApplication(ctx, req.ApplicationNumber)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != a.Version {
		return nil, fmt.Errorf("application %s: %w", a.ApplicationNumber, domain.ErrVersionMismatch)
	}
	if err := a.CheckStatusTransition(req.Status); err != nil {
		return nil, err
	}
	if a.Status == req.Status {
		a.RefreshDerived(s.now())
		return a, nil
	}
	from := a.Status
	a.Status = req.Status
	if err := s.apps.UpdateApplication(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info("Application status changed",
		zap.String("application_number", a.ApplicationNumber),
		zap.String("from", string(from)),
		zap.String("to", string(a.Status)),
	)
	a.RefreshDerived(s.now())
	return a, nil
}

func (s *applicationService) Delete(ctx context.Context, applicationNumber string) error {
	if err := s.apps.DeleteApplication(ctx, applicationNumber); err != nil {
		return err
	}
	s.logger.Info("Application deleted", zap.String("application_number", applicationNumber))
	return nil
}

func (s *applicationService) RemoveStudent(ctx context.Context, applicationNumber string) (*domain.Application, error) {
	a, room, err := s.allotment.RemoveStudent(ctx, applicationNumber)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Student removed", zap.String("application_number", applicationNumber))
	if room != nil {
		publishAllotment(ctx, s.events, s.logger, domain.EventReleased, a, room, s.now())
	}
	return a, nil
}

// publishAllotment is best effort: the database change is already committed.
func publishAllotment(ctx context.Context, events AllotmentEvents, logger *zap.Logger, typ string, a *domain.Application, r *domain.Room, at time.Time) {
	ev := domain.AllotmentEvent{
		Type:              typ,
		ApplicationNumber: a.ApplicationNumber,
		StudentName:       a.Name,
		RoomNumber:        r.RoomNumber,
		OccupiedCount:     r.OccupiedCount,
		Capacity:          r.Capacity,
		At:                at.UTC(),
	}
	if err := events.Publish(ctx, ev); err != nil {
		logger.Warn("Failed to publish allotment event", zap.String("type", typ), zap.Error(err))
	}
}
