package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// FeeScheduler runs the monthly accrual on a cron spec.
type FeeScheduler struct {
	cron    *cron.Cron
	fees    FeeService
	timeout time.Duration
	logger  *zap.Logger
}

// NewFeeScheduler parses spec (standard five-field cron, UTC). The job is not
// started until Start.
func NewFeeScheduler(spec string, fees FeeService, logger *zap.Logger) (*FeeScheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	s := &FeeScheduler{cron: c, fees: fees, timeout: 5 * time.Minute, logger: logger}
	if _, err := c.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid FEE_ACCRUAL_CRON %q: %w", spec, err)
	}
	return s, nil
}

func (s *FeeScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	n, err := s.fees.AccrueMonthly(ctx)
	if err != nil {
		s.logger.Error("Fee accrual failed", zap.Int("updated", n), zap.Error(err))
	}
}

func (s *FeeScheduler) Start() {
	s.cron.Start()
	s.logger.Info("Fee accrual scheduler started")
}

// Stop waits for a running job to finish or ctx to expire.
func (s *FeeScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Fee accrual still running at shutdown")
	}
}
