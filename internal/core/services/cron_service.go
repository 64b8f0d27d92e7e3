package services

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// CronService runs the scheduled maintenance jobs: the midnight
// reservation expiry sweep and the nightly refresh token purge.
type CronService struct {
	cron         *cron.Cron
	reservations *ReservationService
	auth         *AuthService
}

// NewCronService creates a new cron service
func NewCronService(reservations *ReservationService, auth *AuthService) *CronService {
	return &CronService{
		cron:         cron.New(),
		reservations: reservations,
		auth:         auth,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() {
	// Daily at midnight: expire overstayed holds and promote the queue
	if _, err := s.cron.AddFunc("0 0 * * *", s.runSweep); err != nil {
		log.Printf("❌ Failed to schedule reservation sweep: %v", err)
		return
	}

	// Half past midnight: drop refresh tokens past their expiry
	if _, err := s.cron.AddFunc("30 0 * * *", s.runTokenPurge); err != nil {
		log.Printf("❌ Failed to schedule refresh token purge: %v", err)
		return
	}

	s.cron.Start()
	log.Println("🚀 Cron service started (reservation sweep and token purge)")
}

// Stop stops the scheduler, letting a running job finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron service stopped")
}

func (s *CronService) runSweep() {
	count, err := s.reservations.SweepExpired(context.Background())
	if err != nil {
		log.Printf("❌ Reservation expiry sweep failed: %v", err)
		return
	}
	if count == 0 {
		log.Println("✅ Reservation expiry sweep: nothing to expire")
	}
}

func (s *CronService) runTokenPurge() {
	if err := s.auth.PurgeExpiredTokens(context.Background()); err != nil {
		log.Printf("❌ Refresh token purge failed: %v", err)
		return
	}
	log.Println("✅ Expired refresh tokens purged")
}
