package services

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dissertrack/backend/internal/config"
	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	utils.SetJWTSecret("test-secret-for-service-testing")
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := models.SeedLookupData(db); err != nil {
		t.Fatalf("failed to seed lookup data: %v", err)
	}
	return db
}

var userSeq int

func createUser(t *testing.T, db *gorm.DB, roleID, statusID uint) *models.User {
	t.Helper()

	userSeq++
	user := &models.User{
		Username:     fmt.Sprintf("user%d", userSeq),
		Email:        fmt.Sprintf("user%d@test.local", userSeq),
		PasswordHash: "x",
		RoleID:       roleID,
		StatusID:     statusID,
		AuthType:     "local",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createGroup(t *testing.T, db *gorm.DB, supervisorID uint, studentIDs ...uint) *models.Group {
	t.Helper()

	svc := NewGroupService(db)
	group, err := svc.Create(&CreateGroupRequest{
		Name:         fmt.Sprintf("Group %d", supervisorID),
		SupervisorID: supervisorID,
		StudentIDs:   studentIDs,
	})
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	return group
}

func createAcceptedProject(t *testing.T, db *gorm.DB, supervisorID, groupID uint) *models.Project {
	t.Helper()

	svc := NewProjectService(db)
	project, err := svc.Create(supervisorID, &CreateProjectRequest{
		Title:       "Dissertation Project",
		Description: "A test project",
		GroupID:     groupID,
	})
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	return project
}

func createMilestone(t *testing.T, db *gorm.DB, supervisorID, projectID uint, dueDate time.Time) *models.Milestone {
	t.Helper()

	svc := NewMilestoneService(db)
	milestone, err := svc.Create(supervisorID, &CreateMilestoneRequest{
		ProjectID: projectID,
		Title:     "Draft Chapter",
		DueDate:   dueDate.Format("2006-01-02"),
	})
	if err != nil {
		t.Fatalf("failed to create milestone: %v", err)
	}
	return milestone
}

func newTestStorage(t *testing.T) *StorageService {
	t.Helper()

	base := t.TempDir()
	storage := NewStorageService(&config.StorageConfig{
		UploadDir:     filepath.Join(base, "uploads"),
		StagingDir:    filepath.Join(base, "staging"),
		SweepAgeHours: 1,
	})
	if err := storage.EnsureDirs(); err != nil {
		t.Fatalf("failed to prepare storage dirs: %v", err)
	}
	return storage
}

// stageTestFile writes a fake staged file directly into the staging dir.
func stageTestFile(t *testing.T, storage *StorageService, name string, content []byte) *StagedFile {
	t.Helper()

	storedName := fmt.Sprintf("stored-%s", name)
	stagedPath := filepath.Join(storage.cfg.StagingDir, storedName)
	if err := os.WriteFile(stagedPath, content, 0o644); err != nil {
		t.Fatalf("failed to write staged file: %v", err)
	}
	return &StagedFile{
		OriginalName: name,
		StoredName:   storedName,
		StagedPath:   stagedPath,
		Size:         int64(len(content)),
		ContentType:  "application/octet-stream",
	}
}

func historyCount(t *testing.T, db *gorm.DB, projectID uint) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.ProjectHistory{}).
		Where("project_id = ?", projectID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count history: %v", err)
	}
	return count
}
