package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/msallal/yawmia/internal/config"
	"github.com/msallal/yawmia/internal/service/ledger"
)

// Scheduler manages scheduled maintenance tasks.
type Scheduler struct {
	cron      *cron.Cron
	ledgerSvc *ledger.Service
	cfg       config.ReconcileConfig
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.ReconcileConfig, ledgerSvc *ledger.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:      cron.New(),
		ledgerSvc: ledgerSvc,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers the reconciliation job and starts the cron loop. A no-op
// when reconciliation is disabled in config.
func (s *Scheduler) Start() {
	if !s.cfg.Enabled {
		s.logger.Info("advance reconciliation disabled")
		return
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.reconcileAdvances); err != nil {
		s.logger.Error("failed to schedule advance reconciliation", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

// reconcileAdvances rebuilds every monthly advance cache from the entries
// table, repairing any drift introduced by edits or deletes.
func (s *Scheduler) reconcileAdvances() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.ledgerSvc.ReconcileAdvances(ctx); err != nil {
		s.logger.Error("advance reconciliation failed", zap.Error(err))
	}
}
