package jobs

import (
	"context"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"

	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

// Job is a recurring maintenance task.
type Job interface {
	Name() string
	// Schedule is a robfig/cron spec such as "@every 1h".
	Schedule() string
	Run(ctx context.Context) error
}

// Runner schedules jobs on a cron and never runs two copies of the same job.
type Runner struct {
	log     *logger.Logger
	cron    *cron.Cron
	jobs    []Job
	running mapset.Set[string]
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewRunner(log *logger.Logger, jobs ...Job) *Runner {
	return &Runner{
		log:     log.With("component", "JobRunner"),
		cron:    cron.New(),
		jobs:    jobs,
		running: mapset.NewSet[string](),
	}
}

// Start registers every job and starts the cron. Jobs observe ctx for cancellation.
func (r *Runner) Start(ctx context.Context) error {
	if r.cancel != nil {
		return fmt.Errorf("job runner already started")
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	for _, job := range r.jobs {
		job := job
		if err := r.cron.AddFunc(job.Schedule(), func() { r.RunOnce(r.ctx, job) }); err != nil {
			r.cancel()
			r.cancel = nil
			return fmt.Errorf("schedule job %s: %w", job.Name(), err)
		}
		r.log.Info("Scheduled job", "job", job.Name(), "schedule", job.Schedule())
	}
	r.cron.Start()
	return nil
}

func (r *Runner) Stop() {
	if r.cancel == nil {
		return
	}
	r.log.Info("Stopping scheduled jobs")
	r.cron.Stop()
	r.cancel()
	r.cancel = nil
}

// RunOnce executes job immediately. It returns false when the job was already running.
func (r *Runner) RunOnce(ctx context.Context, job Job) (ran bool) {
	if !r.running.Add(job.Name()) {
		r.log.Warn("Job still running, skipping tick", "job", job.Name())
		return false
	}
	ran = true
	defer r.running.Remove(job.Name())

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Job panic", "job", job.Name(), "panic", rec)
		}
	}()
	if err := job.Run(ctx); err != nil {
		r.log.Warn("Job failed", "job", job.Name(), "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	r.log.Debug("Job finished", "job", job.Name(), "duration_ms", time.Since(start).Milliseconds())
	return
}
