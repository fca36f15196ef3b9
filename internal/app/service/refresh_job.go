package service

import (
	"context"
	"time"

	"unipool_backend/internal/app/port"
)

// RefreshJob adapts the portfolio refresh pipeline to the scheduler's job
// interface.
type RefreshJob struct {
	portfolioSvc port.PortfolioService
	timeout      time.Duration
}

// NewRefreshJob creates a refresh job with a per-run timeout.
func NewRefreshJob(svc port.PortfolioService, timeout time.Duration) *RefreshJob {
	return &RefreshJob{portfolioSvc: svc, timeout: timeout}
}

// Name implements scheduler.Job.
func (j *RefreshJob) Name() string {
	return "portfolio_refresh"
}

// Run implements scheduler.Job.
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	_, err := j.portfolioSvc.Refresh(ctx)
	return err
}
