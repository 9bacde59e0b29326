package cron

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// jobTimeout bounds a single run so a stuck job cannot wedge its ticker loop.
const jobTimeout = 5 * time.Minute

// Job is a function run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs registered jobs on their intervals, each in its own
// goroutine. Register everything before calling Start.
type Scheduler struct {
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a job. The first run happens as soon as Start is called.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Fn: fn})
	slog.Info("background job registered", "name", name, "interval", interval)
}

// Start launches a ticker loop per registered job.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(job)
	}

	slog.Info("background scheduler started", "job_count", len(s.jobs))
}

// Stop cancels all job loops and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("background scheduler stopped")
}

func (s *Scheduler) loop(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.execute(job)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.execute(job)
		}
	}
}

// execute runs one invocation. A panicking job is logged and its loop kept
// alive; one bad run must not kill the schedule.
func (s *Scheduler) execute(job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("background job panicked",
				"name", job.Name, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	start := time.Now()
	if err := job.Fn(ctx); err != nil {
		slog.Error("background job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("background job completed", "name", job.Name, "duration", time.Since(start))
}

// RunOnce runs every registered job a single time on the caller's context.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		if err := job.Fn(ctx); err != nil {
			slog.Error("background job failed", "name", job.Name, "error", err)
		}
	}
}
