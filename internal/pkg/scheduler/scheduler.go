package scheduler

import (
	"unipool_backend/internal/app/port"

	"github.com/robfig/cron/v3"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron   *cron.Cron
	logger port.Logger
}

// New creates a new scheduler
func New(l port.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: l,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// AddJob registers a new job with a cron schedule.
// Schedule examples:
//   - "@every 60s" - every 60 seconds
//   - "@hourly"    - every hour
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.logger.Debug("Running job", "job", job.Name())
		if err := job.Run(); err != nil {
			s.logger.Error("Job failed", "job", job.Name(), "error", err)
			return
		}
		s.logger.Debug("Job completed", "job", job.Name())
	})
	if err != nil {
		return err
	}

	s.logger.Info("Job registered", "job", job.Name(), "schedule", schedule)
	return nil
}

// RunNow executes a job immediately, outside its schedule
func (s *Scheduler) RunNow(job Job) error {
	s.logger.Info("Running job immediately", "job", job.Name())
	return job.Run()
}
