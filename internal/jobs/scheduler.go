package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const runTimeout = 5 * time.Minute

type Scheduler struct {
	cron *cron.Cron
	jobs []Job
	log  zerolog.Logger
}

func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log,
	}
}

// Register adds job to the scheduler. Jobs with a schedule are planned on the
// cron, the others can only be started with RunByName.
func (s *Scheduler) Register(job Job) error {
	if spec := job.Schedule(); spec != "" {
		if _, err := s.cron.AddFunc(spec, func() { s.execute(job) }); err != nil {
			return fmt.Errorf("schedule %s with %q: %w", job.Name(), spec, err)
		}
		s.log.Info().Str("job", job.Name()).Str("schedule", spec).Msg("job scheduled")
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")
}

// Stop halts the cron and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stopped before running jobs finished")
	}
}

// RunByName runs a registered job right away.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			return job.Run(ctx)
		}
	}
	return fmt.Errorf("job %q not registered", name)
}

func (s *Scheduler) Names() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}

func (s *Scheduler) execute(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.log.Error().Err(err).Str("job", job.Name()).Msg("job failed")
		return
	}
	s.log.Info().Str("job", job.Name()).Dur("took", time.Since(start)).Msg("job done")
}
