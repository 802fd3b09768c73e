package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/quizify/internal/quizify/store"
)

// HousekeepingService periodically checks the database and runs driver
// maintenance. It never deletes data: expired verification tickets stay on
// the user until a new ticket replaces them.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping worker. If interval is 0 or
// negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress run has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	_ = s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			_ = s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce pings the database and optimizes it. Failures are logged and
// returned; the next tick tries again.
func (s *HousekeepingService) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	start := time.Now()
	if err := s.Store.Ping(ctx); err != nil {
		s.Logger.Error("housekeeping: database unreachable", "error", err)
		return err
	}
	if err := s.Store.Optimize(ctx); err != nil {
		s.Logger.Error("housekeeping: optimize failed", "error", err)
		return err
	}

	s.Logger.Debug("housekeeping completed", "duration", time.Since(start))
	return nil
}
