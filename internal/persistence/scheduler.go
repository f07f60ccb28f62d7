package persistence

import (
	"beelandr/internal/persistence/interfaces"
	"beelandr/internal/providers"
	"beelandr/internal/structures"
	"github.com/roylee0704/gron"
	"sync"
	"time"
)

type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	pruner      interfaces.PrunerInterface
	fileManager *FileManager
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Storage.SaveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		if err := s.save(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting store: %s", err)
			return
		}
		s.logger.Debugf(providers.TypeApp, "Persisted store to file %s", s.config.Storage.FilePath)
	})

	if s.config.Weather.PruneInterval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Weather.PruneInterval), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()

			if n := s.pruner.PruneExpired(); n > 0 {
				s.logger.Infof(providers.TypeWeather, "Pruned %d expired weather cache entries", n)
			}
		})
	}

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	err := s.fileManager.LoadFromFile(s.config.Storage.FilePath)
	if err != nil {
		return err
	}
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting store to file...")
	err := s.save()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting store: %s", err)
		return err
	}
	return nil
}

func (s *Scheduler) save() error {
	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Storage.FilePath)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return err
}

func NewScheduler(config *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, pruner interfaces.PrunerInterface, fileManager *FileManager) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		metrics:     metrics,
		pruner:      pruner,
		fileManager: fileManager,
	}
}
