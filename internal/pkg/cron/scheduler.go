package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
)

// Job is a named scan run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs each job in its own goroutine. A run is bounded by the
// job timeout and runs of the same job never overlap.
type Scheduler struct {
	clock      clock.Clock
	jobTimeout time.Duration

	mu      sync.Mutex
	jobs    []Job
	started bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(clk clock.Clock, jobTimeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		clock:      clk,
		jobTimeout: jobTimeout,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// AddJob registers a job. Jobs added after Start are ignored.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		slog.Warn("Cron job registered after start, ignoring", "name", name)
		return
	}
	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Fn: fn})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// Jobs returns the registered jobs.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Job(nil), s.jobs...)
}

// Start runs every job once and then on its interval until Stop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs), "job_timeout", s.jobTimeout)
}

// Stop cancels in-flight runs and waits for every loop to exit.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) loop(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	_ = s.Run(s.ctx, job)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			_ = s.Run(s.ctx, job)
		}
	}
}

// Run executes one run of job under the job timeout and logs the outcome.
// A panicking job is reported as an error.
func (s *Scheduler) Run(ctx context.Context, job Job) (err error) {
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	start := s.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cron job %s panicked: %v", job.Name, r)
		}
		elapsed := s.clock.Now().Sub(start)
		if err != nil {
			slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", elapsed)
			return
		}
		slog.Debug("Cron job completed", "name", job.Name, "duration", elapsed)
	}()

	return job.Fn(ctx)
}
