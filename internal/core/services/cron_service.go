package services

import (
	"context"
	"time"

	"it-incidents-backend/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultCleanupSchedule purges expired refresh tokens hourly
const DefaultCleanupSchedule = "@every 1h"

// CronService runs scheduled maintenance jobs
type CronService struct {
	cron          *cron.Cron
	refreshTokens repositories.RefreshTokenRepository
	schedule      string
	logger        *zap.Logger
	now           func() time.Time
}

// NewCronService creates a new cron service
func NewCronService(
	refreshTokens repositories.RefreshTokenRepository,
	schedule string,
	logger *zap.Logger,
	opts ...Option,
) *CronService {
	o := applyOptions(opts)
	if schedule == "" {
		schedule = DefaultCleanupSchedule
	}
	return &CronService{
		cron:          cron.New(),
		refreshTokens: refreshTokens,
		schedule:      schedule,
		logger:        logger,
		now:           o.now,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.PurgeExpiredTokens(context.Background())
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron service started", zap.String("refresh_token_cleanup", s.schedule))
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cron service stopped")
}

// PurgeExpiredTokens deletes refresh tokens past their expiry
func (s *CronService) PurgeExpiredTokens(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	deleted, err := s.refreshTokens.DeleteExpired(ctx, s.now())
	if err != nil {
		s.logger.Error("purge expired refresh tokens", zap.Error(err))
		return 0
	}
	if deleted > 0 {
		s.logger.Info("expired refresh tokens purged", zap.Int64("count", deleted))
	}
	return deleted
}
