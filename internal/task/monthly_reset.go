// Package task runs scheduled maintenance jobs.
package task

import (
	"context"

	"github.com/coldline-crm/coldline/internal/store"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartMonthlyReset schedules the monthly counter reset. The returned
// cron is already started; the caller stops it on shutdown.
func StartMonthlyReset(s *store.Store, schedule string, logger *zap.Logger) (*cron.Cron, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		affected, err := s.ResetMonthlyCounters(context.Background())
		if err != nil {
			logger.Error("monthly counter reset failed", zap.Error(err))
			return
		}
		logger.Info("monthly counters reset", zap.Int64("clients", affected))
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	logger.Info("monthly reset task scheduled", zap.String("schedule", schedule))
	return c, nil
}
