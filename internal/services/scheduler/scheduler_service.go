package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// Service runs the periodic ingestion sweep on a cron schedule. One run at a
// time; a trigger while a run is active is skipped, not queued.
type Service struct {
	cron      *cron.Cron
	logger    arbor.ILogger
	runFn     func(ctx context.Context) error
	mu        sync.Mutex
	isRunning bool
	started   bool
	lastRun   time.Time
	lastError string
}

func NewService(runFn func(ctx context.Context) error, logger arbor.ILogger) *Service {
	return &Service{
		cron:   cron.New(),
		runFn:  runFn,
		logger: logger,
	}
}

// Start registers the schedule and begins the cron loop
func (s *Service) Start(cronExpr string) error {
	if s.started {
		return fmt.Errorf("scheduler already running")
	}
	if cronExpr == "" {
		cronExpr = "0 */6 * * *"
	}

	if _, err := s.cron.AddFunc(cronExpr, s.runScheduled); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.cron.Start()
	s.started = true

	s.logger.Info().Str("cron_expr", cronExpr).Msg("Ingestion scheduler started")
	return nil
}

// Stop halts the cron loop and waits for an in-flight run to finish
func (s *Service) Stop() {
	if !s.started {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.started = false
	s.logger.Info().Msg("Ingestion scheduler stopped")
}

// Trigger starts a run immediately. Returns false when a run is already in
// flight.
func (s *Service) Trigger() bool {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return false
	}
	s.isRunning = true
	s.mu.Unlock()

	go s.run()
	return true
}

func (s *Service) runScheduled() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		s.logger.Warn().Msg("Scheduled ingestion skipped, previous run still active")
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	s.run()
}

func (s *Service) run() {
	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	start := time.Now()
	err := s.runFn(context.Background())

	s.mu.Lock()
	s.lastRun = start
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled ingestion run failed")
		return
	}
	s.logger.Info().Dur("duration", time.Since(start)).Msg("Scheduled ingestion run completed")
}

// Status reports the scheduler state for the status endpoint
func (s *Service) Status() (running bool, lastRun time.Time, lastError string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning, s.lastRun, s.lastError
}
