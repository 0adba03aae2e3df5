package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const DefaultInterval = time.Hour

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Stats describes the loop's progress since start.
type Stats struct {
	Interval      string     `json:"interval"`
	Cycles        int        `json:"cycles"`
	Failures      int        `json:"failures"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	LastChangeID  string     `json:"last_change_id,omitempty"`
}

// Scheduler runs one ScrapeCatalogTask per interval on a single goroutine.
// Cycles never overlap and cancellation is only observed while sleeping.
type Scheduler struct {
	deps     CycleDeps
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu    sync.Mutex
	stats Stats
}

func NewScheduler(deps CycleDeps, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		deps:     deps,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		stats:    Stats{Interval: interval.String()},
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(s.ctx)
	}()
}

// Stop cancels the loop and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Run executes cycles until ctx is cancelled. The first cycle starts
// immediately.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("Scheduler started", "interval", s.interval.String())

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		s.runCycle(ctx)

		timer.Reset(s.interval)
		slog.Debug("Scheduler sleeping", "interval", s.interval.String())

		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return
		case <-timer.C:
		}
	}
}

func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Scheduler) runCycle(ctx context.Context) {
	task := NewScrapeCatalogTask(s.deps)
	task.Start()

	err := s.executeTask(context.WithoutCancel(ctx), task)
	duration := task.GetDuration()

	s.deps.Metrics.ObserveCycle(err, duration)
	s.record(task, err)

	if err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "duration", duration, "error", err)
	}
}

func (s *Scheduler) executeTask(ctx context.Context, task *ScrapeCatalogTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	return task.Execute(ctx)
}

func (s *Scheduler) record(task *ScrapeCatalogTask, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.stats.Cycles++
	s.stats.LastRunAt = &now

	if task.Change != nil {
		s.stats.LastChangeID = task.Change.ID.String()
	}

	if err != nil {
		s.stats.Failures++
		s.stats.LastError = err.Error()
		return
	}

	s.stats.LastSuccessAt = &now
	s.stats.LastError = ""
}
