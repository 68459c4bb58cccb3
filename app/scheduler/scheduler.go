// Package scheduler runs the periodic background jobs of the API
package scheduler

import (
	"context"
	"fmt"
	"time"

	businessflow "github.com/amirphl/dental-clinic/business_flow"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/robfig/cron/v3"
)

// DefaultLeadMetricsSpec refreshes the lead gauges every five minutes
const DefaultLeadMetricsSpec = "@every 5m"

// LeadMetricsRefresher is the part of the dashboard flow the jobs need
type LeadMetricsRefresher interface {
	RefreshLeadMetrics(ctx context.Context) (*businessflow.LeadMetricsSnapshot, error)
}

// Scheduler owns the cron instance and its jobs
type Scheduler struct {
	cron       *cron.Cron
	dashboard  LeadMetricsRefresher
	jobTimeout time.Duration
	log        logger.Logger
}

func New(dashboard LeadMetricsRefresher, location *time.Location, log logger.Logger) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(location)),
		dashboard:  dashboard,
		jobTimeout: time.Minute,
		log:        log.With("component", "scheduler"),
	}
}

// SetupJobs registers every job. spec is a cron expression or descriptor for
// the lead metrics job; empty means DefaultLeadMetricsSpec.
func (s *Scheduler) SetupJobs(spec string) error {
	if spec == "" {
		spec = DefaultLeadMetricsSpec
	}
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		_, _ = s.RunLeadMetrics(ctx)
	}); err != nil {
		return fmt.Errorf("invalid lead metrics schedule %q: %w", spec, err)
	}
	return nil
}

// RunLeadMetrics refreshes the lead gauges once and logs new leads that have
// been waiting longer than the stale window.
func (s *Scheduler) RunLeadMetrics(ctx context.Context) (*businessflow.LeadMetricsSnapshot, error) {
	snapshot, err := s.dashboard.RefreshLeadMetrics(ctx)
	if err != nil {
		s.log.Error("lead metrics job failed", "error", err)
		return nil, err
	}
	if snapshot.StaleNew > 0 {
		s.log.Warn("new leads waiting for a call",
			"count", snapshot.StaleNew,
			"created_before", snapshot.StaleCutoff,
		)
	}
	s.log.Debug("lead metrics refreshed", "by_status", snapshot.ByStatus)
	return snapshot, nil
}

// Start runs the jobs in the background
func (s *Scheduler) Start() {
	s.log.Info("starting scheduler", "jobs", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs or ctx, whichever ends first
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}
