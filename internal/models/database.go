package models

import (
	"fmt"

	"github.com/dissertrack/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return MigrateAll(DB)
}

// MigrateAll runs migrations against the given connection. Tests use it
// against throwaway sqlite databases.
func MigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&Role{},
		&UserStatus{},
		&Department{},
		&User{},
		&Profile{},
		&RefreshToken{},
		&Group{},
		&StudentGroup{},
		&Project{},
		&Milestone{},
		&Submission{},
		&FileUpload{},
		&ProjectHistory{},
		&Feedback{},
		&Notification{},
		&AuditLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates the lookup rows the rest of the schema references.
func SeedDefaultData() error {
	return SeedLookupData(DB)
}

func SeedLookupData(db *gorm.DB) error {
	roles := []Role{
		{ID: RoleAdmin, Name: "admin"},
		{ID: RoleSupervisor, Name: "supervisor"},
		{ID: RoleStudent, Name: "student"},
	}
	for _, r := range roles {
		var count int64
		db.Model(&Role{}).Where("id = ?", r.ID).Count(&count)
		if count == 0 {
			if err := db.Create(&r).Error; err != nil {
				return err
			}
		}
	}

	statuses := []UserStatus{
		{ID: StatusPending, Name: "Pending"},
		{ID: StatusRejected, Name: "Rejected"},
		{ID: StatusInactive, Name: "Inactive"},
		{ID: StatusBlocked, Name: "Blocked"},
		{ID: StatusActive, Name: "Active"},
	}
	for _, s := range statuses {
		var count int64
		db.Model(&UserStatus{}).Where("id = ?", s.ID).Count(&count)
		if count == 0 {
			if err := db.Create(&s).Error; err != nil {
				return err
			}
		}
	}

	departments := []string{
		"Computer Science",
		"Software Engineering",
		"Information Technology",
		"Data Science",
	}
	for _, name := range departments {
		var count int64
		db.Model(&Department{}).Where("name = ?", name).Count(&count)
		if count == 0 {
			if err := db.Create(&Department{Name: name}).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
