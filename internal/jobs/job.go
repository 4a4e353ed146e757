package jobs

import "context"

// Job is a unit of maintenance work run by the Scheduler.
type Job interface {
	// Name identifies the job in logs and for manual runs.
	Name() string

	// Schedule is a cron spec with seconds ("0 0 * * * *"). An empty spec
	// registers the job for manual runs only.
	Schedule() string

	Run(ctx context.Context) error
}
