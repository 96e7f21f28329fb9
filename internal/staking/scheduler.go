package staking

import (
	"rld/internal/providers"
	"rld/internal/staking/interfaces"
	"rld/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

// Scheduler owns the background jobs: state persistence, the snapshot
// tick, hourly maintenance (retention prune, limiter sweep) and the
// daily reward batch. Jobs share one mutex, matching their idempotent
// re-runnable design — overlap is legal but pointless.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	clock       providers.ClockInterface
	fileManager *FileManager
	recorder    *SnapshotRecorder
	calculator  *RewardCalculator
	limiter     providers.RateLimiterInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func NewScheduler(config *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, clock providers.ClockInterface, fileManager *FileManager, recorder *SnapshotRecorder, calculator *RewardCalculator, limiter providers.RateLimiterInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
		fileManager: fileManager,
		recorder:    recorder,
		calculator:  calculator,
		limiter:     limiter,
	}
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		start := s.clock.Now()
		err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
			return
		}
		s.metrics.ObservePersistenceDuration(s.clock.Now().Sub(start))
		s.logger.Infof(providers.TypeApp, "Persisted state to file %s", s.config.Persistence.FilePath)
	})

	s.cron.AddFunc(gron.Every(s.config.Ledger.SnapshotInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		n := s.recorder.RecordTick()
		s.logger.Infof(providers.TypeApp, "Snapshot tick: %d accounts sampled", n)
	})

	s.cron.AddFunc(gron.Every(time.Hour), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		if pruned := s.recorder.Prune(); pruned > 0 {
			s.logger.Infof(providers.TypeApp, "Pruned %d expired snapshots", pruned)
		}
		s.limiter.Sweep()
		s.maybeRunRewards()
	})

	s.cron.Start()
}

// maybeRunRewards runs the batch for yesterday once the configured hour
// is reached. The record-per-(account,date) guard makes the repeated
// hourly call a no-op after the first success.
func (s *Scheduler) maybeRunRewards() {
	now := s.clock.Now().UTC()
	if now.Hour() < s.config.Staking.RewardRunHour {
		return
	}
	yesterday := now.AddDate(0, 0, -1)
	if err := s.calculator.RunForDate(yesterday); err != nil {
		s.logger.Errorf(providers.TypeApp, "Reward batch error: %s", err)
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	return s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting ledger state to file...")
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	return nil
}
