package main

import (
	"github.com/dissertrack/backend/internal/config"
	"github.com/dissertrack/backend/internal/handlers"
	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/internal/services"
	"github.com/dissertrack/backend/internal/utils"
	"github.com/dissertrack/backend/pkg/logger"
)

// appServices holds the initialized services and handlers wired at startup.
type appServices struct {
	storage         *services.StorageService
	taskQueue       services.TaskQueue
	worker          *services.Worker
	reminderService *services.ReminderService
	housekeeping    *services.HousekeepingService
	authHandler     *handlers.AuthHandler
}

// bootstrap initializes the database, storage, schedulers and the
// notification pipeline.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	services.InitAuditLogger(models.GetDB())

	storage := services.NewStorageService(&cfg.Storage)
	if err := storage.EnsureDirs(); err != nil {
		logger.Fatalf("Failed to prepare storage directories: %v", err)
	}

	// Notification pipeline: asynq-backed when Redis is enabled,
	// in-process otherwise. Both paths deliver through the same service.
	notificationService := services.NewNotificationService(models.GetDB())
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(notificationService.Deliver)
	}

	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(notificationService.Deliver)
			worker.Start()
		}
	}

	reminderService := services.NewReminderService(models.GetDB(), &cfg.Reminders)
	reminderService.StartScheduler()

	housekeeping := services.NewHousekeepingService(models.GetDB(), storage, &cfg.Audit)
	housekeeping.StartScheduler()

	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		storage:         storage,
		taskQueue:       taskQueue,
		worker:          worker,
		reminderService: reminderService,
		housekeeping:    housekeeping,
		authHandler:     authHandler,
	}
}

// shutdown gracefully stops schedulers, the worker and the queue.
func (s *appServices) shutdown() {
	s.reminderService.StopScheduler()
	s.housekeeping.StopScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
