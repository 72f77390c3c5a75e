package services

import (
	"github.com/dissertrack/backend/internal/config"
	"github.com/dissertrack/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// HousekeepingService runs the periodic maintenance jobs: audit log
// retention and the staging directory sweep.
type HousekeepingService struct {
	auditSvc  *AuditLogService
	storage   *StorageService
	auditCfg  *config.AuditConfig
	scheduler *cron.Cron
}

func NewHousekeepingService(db *gorm.DB, storage *StorageService, auditCfg *config.AuditConfig) *HousekeepingService {
	return &HousekeepingService{
		auditSvc: NewAuditLogService(db),
		storage:  storage,
		auditCfg: auditCfg,
	}
}

func (s *HousekeepingService) StartScheduler() {
	s.scheduler = cron.New()

	// Retention sweep nightly, staging sweep hourly.
	if _, err := s.scheduler.AddFunc("0 3 * * *", func() {
		s.auditSvc.RunCleanup(s.auditCfg.RetentionDays)
	}); err != nil {
		logger.Errorf("[Housekeeping] Failed to schedule audit cleanup: %v", err)
	}

	if _, err := s.scheduler.AddFunc("30 * * * *", func() {
		if _, err := s.storage.SweepStaging(); err != nil {
			logger.Errorf("[Housekeeping] Staging sweep failed: %v", err)
		}
	}); err != nil {
		logger.Errorf("[Housekeeping] Failed to schedule staging sweep: %v", err)
	}

	s.scheduler.Start()
	logger.Infof("[Housekeeping] Scheduler started")
}

func (s *HousekeepingService) StopScheduler() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
