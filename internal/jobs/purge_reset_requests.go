package jobs

import (
	"context"

	"github.com/rs/zerolog"
)

const PurgeResetRequestsName = "purge-reset-requests"

// ResetPurger deletes expired password reset requests.
type ResetPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type purgeResetRequests struct {
	purger   ResetPurger
	schedule string
	log      zerolog.Logger
}

func NewPurgeResetRequests(purger ResetPurger, schedule string, log zerolog.Logger) Job {
	return &purgeResetRequests{purger: purger, schedule: schedule, log: log}
}

func (j *purgeResetRequests) Name() string     { return PurgeResetRequestsName }
func (j *purgeResetRequests) Schedule() string { return j.schedule }

func (j *purgeResetRequests) Run(ctx context.Context) error {
	n, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	j.log.Info().Int64("deleted", n).Msg("expired reset requests purged")
	return nil
}
