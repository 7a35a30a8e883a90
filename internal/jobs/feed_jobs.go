package jobs

import (
	"context"
	"time"

	"github.com/langouL/meteopad/internal/config"
	"github.com/langouL/meteopad/internal/logger"
	"github.com/langouL/meteopad/internal/service"
)

// JobRunner executes scheduled maintenance work. The ledger's grant
// expiry is deliberately NOT scheduled here: expiry happens lazily
// inside entitlement checks, and a background sweep would change the
// observable timing of the status transition.
type JobRunner struct {
	cfg *config.Config
	obs service.ObservationService
}

func NewJobRunner(cfg *config.Config, obs service.ObservationService) *JobRunner {
	return &JobRunner{cfg: cfg, obs: obs}
}

// Config returns the application configuration
func (r *JobRunner) Config() *config.Config {
	return r.cfg
}

// RefreshFeed pulls a fresh observation snapshot from the upstream API.
func (r *JobRunner) RefreshFeed() {
	started := time.Now()
	logger.Info("Starting job: RefreshFeed")

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(r.cfg.Feed.TimeoutSeconds)*time.Second)
	defer cancel()

	if err := r.obs.Refresh(ctx); err != nil {
		logger.Error("Job RefreshFeed failed", "error", err, "duration", time.Since(started))
		return
	}
	logger.Info("Job RefreshFeed completed", "duration", time.Since(started))
}
