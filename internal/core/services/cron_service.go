package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TokenPurgeSchedule runs the refresh-token purge at 03:00 every day
const TokenPurgeSchedule = "0 3 * * *"

// CronService runs periodic maintenance jobs
type CronService struct {
	cron   *cron.Cron
	tokens RefreshTokenStore
	log    *zap.Logger
	now    func() time.Time
}

// NewCronService creates a new cron service
func NewCronService(tokens RefreshTokenStore, log *zap.Logger) *CronService {
	return &CronService{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		tokens: tokens,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(TokenPurgeSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.PurgeTokens(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("cron started", zap.String("token_purge", TokenPurgeSchedule))
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron stopped")
}

// PurgeTokens deletes expired and revoked refresh tokens
func (s *CronService) PurgeTokens(ctx context.Context) int64 {
	n, err := s.tokens.DeleteStaleRefreshTokens(ctx, s.now())
	if err != nil {
		s.log.Error("refresh token purge failed", zap.Error(err))
		return 0
	}
	s.log.Info("refresh tokens purged", zap.Int64("deleted", n))
	return n
}
