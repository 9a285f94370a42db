package onboarding

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Janitor sweeps abandoned drafts past their TTL
type Janitor struct {
	store  DraftStore
	ttl    time.Duration
	logger *zap.Logger
	cron   *cron.Cron
}

// NewJanitor creates a draft sweeper
func NewJanitor(store DraftStore, ttl time.Duration, logger *zap.Logger) *Janitor {
	return &Janitor{
		store:  store,
		ttl:    ttl,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start schedules the sweep. Schedule uses cron syntax, e.g. "@every 10m".
func (j *Janitor) Start(schedule string) error {
	_, err := j.cron.AddFunc(schedule, j.sweep)
	if err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the sweeper
func (j *Janitor) Stop() {
	j.cron.Stop()
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := j.store.DeleteExpired(ctx, time.Now().Add(-j.ttl))
	if err != nil {
		j.logger.Warn("Draft sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		j.logger.Info("Swept expired drafts", zap.Int("removed", removed))
	}
}
