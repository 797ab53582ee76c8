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

// FeeService maintains the mess-fee ledger of approved students.
type FeeService interface {
	List(ctx context.Context) ([]*domain.Application, error)
	Get(ctx context.Context, applicationNumber string) (*domain.Application, error)
	// Update applies an admin edit. changed is false for a no-op such as
	// marking an already Paid record Paid.
	Update(ctx context.Context, req UpdateFeeRequest) (fee *domain.Application, changed bool, err error)
	// AccrueMonthly adds one month to every housed student's ledger and
	// returns how many records were updated.
	AccrueMonthly(ctx context.Context) (int, error)
}

type UpdateFeeRequest struct {
	ApplicationNumber string
	Update            domain.FeeUpdate
	Version           *int
}

type feeService struct {
	apps    repository.ApplicationsRepository
	dueDays int
	logger  *zap.Logger
	now     func() time.Time
}

func NewFeeService(apps repository.ApplicationsRepository, dueDays int, logger *zap.Logger) FeeService {
	return &feeService{apps: apps, dueDays: dueDays, logger: logger, now: time.Now}
}

func (s *feeService) List(ctx context.Context) ([]*domain.Application, error) {
	list, err := s.apps.ListApplications(ctx, repository.ApplicationFilter{Status: domain.ApplicationApproved})
	if err != nil {
		return nil, fmt.Errorf("list fees: %w", err)
	}
	now := s.now()
	for _, a := range list {
		a.RefreshDerived(now)
	}
	return list, nil
}

func (s *feeService) Get(ctx context.Context, applicationNumber string) (*domain.Application, error) {
	a, err := s.apps.GetApplication(ctx, applicationNumber)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.ApplicationApproved {
		return nil, fmt.Errorf("fee record %s: %w", applicationNumber, domain.ErrNotFound)
	}
	a.RefreshDerived(s.now())
	return a, nil
}

func (s *feeService) Update(ctx context.Context, req UpdateFeeRequest) (*domain.Application, bool, error) {
	a, err := s.Get(ctx, req.ApplicationNumber)
	if err != nil {
		return nil, false, err
	}
	if req.Version != nil && *req.Version != a.Version {
		return nil, false, fmt.Errorf("fee record %s: %w", a.ApplicationNumber, domain.ErrVersionMismatch)
	}
	now := s.now()
	changed, err := domain.ApplyFeeUpdate(a, req.Update, now, s.dueDays)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return a, false, nil
	}
	if err := s.apps.UpdateApplication(ctx, a); err != nil {
		return nil, false, err
	}
	s.logger.Info("Fee record updated",
		zap.String("application_number", a.ApplicationNumber),
		zap.String("fee_status", string(a.FeeStatus)),
		zap.Int("months_due", a.MonthsDue),
		zap.Int("fee_amount_due", a.FeeAmountDue),
	)
	a.RefreshDerived(now)
	return a, true, nil
}

func (s *feeService) AccrueMonthly(ctx context.Context) (int, error) {
	list, err := s.apps.ListApplications(ctx, repository.ApplicationFilter{Status: domain.ApplicationApproved, HousedOnly: true})
	if err != nil {
		return 0, fmt.Errorf("list housed students: %w", err)
	}
	now := s.now()
	updated := 0
	for _, a := range list {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		domain.AccrueMonth(a, now, s.dueDays)
		if err := s.apps.UpdateApplication(ctx, a); err != nil {
			// A concurrent admin edit wins; the student is picked up next month.
			if errors.Is(err, domain.ErrVersionMismatch) || errors.Is(err, domain.ErrNotFound) {
				s.logger.Warn("Skipping fee accrual", zap.String("application_number", a.ApplicationNumber), zap.Error(err))
				continue
			}
			return updated, fmt.Errorf("accrue %s: %w", a.ApplicationNumber, err)
		}
		updated++
	}
	s.logger.Info("Monthly fee accrual finished", zap.Int("updated", updated), zap.Int("housed", len(list)))
	return updated, nil
}
