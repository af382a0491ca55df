package bills

import (
	"time"

	"github.com/rs/zerolog"
)

// RefreshJob resolves all five term lengths on a schedule, re-fetching the
// batch whenever any term has gone stale, so interactive requests normally
// hit a warm cache. Also run once at startup to warm the cache.
type RefreshJob struct {
	manager *Manager
	log     zerolog.Logger
}

// NewRefreshJob creates a new scheduled refresh job.
func NewRefreshJob(manager *Manager, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		manager: manager,
		log:     log.With().Str("job", "bill_series_refresh").Logger(),
	}
}

// Run resolves the batch, refreshing it if any term is stale.
func (j *RefreshJob) Run() error {
	if _, err := j.manager.Resolve(time.Now()); err != nil {
		j.log.Error().Err(err).Msg("Scheduled refresh failed")
		return err
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *RefreshJob) Name() string {
	return "bill_series_refresh"
}
