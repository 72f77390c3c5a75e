package services

import (
	"errors"
	"os"

	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/pkg/response"
	"gorm.io/gorm"
)

type FileService struct {
	db *gorm.DB
}

func NewFileService(db *gorm.DB) *FileService {
	return &FileService{db: db}
}

// GetForDownload returns a file the caller may download. A missing file
// is a not-found; an existing file the caller may not see is a
// permission error. The two cases stay distinct.
func (s *FileService) GetForDownload(fileID, userID uint, role string) (*models.FileUpload, error) {
	var file models.FileUpload
	if err := s.db.First(&file, fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("file not found")
		}
		return nil, response.NewPersistence(err)
	}

	allowed, err := s.canDownload(&file, userID, role)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, response.NewPermission("you do not have access to this file")
	}

	if _, err := os.Stat(file.FilePath); err != nil {
		if os.IsNotExist(err) {
			return nil, response.NewNotFound("file is no longer available")
		}
		return nil, response.NewPersistence(err)
	}

	return &file, nil
}

func (s *FileService) canDownload(file *models.FileUpload, userID uint, role string) (bool, error) {
	if role == "admin" {
		return true, nil
	}
	if file.UploadedBy == userID {
		return true, nil
	}

	var submission models.Submission
	if err := s.db.Preload("Project").First(&submission, file.SubmissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, response.NewPersistence(err)
	}

	switch role {
	case "supervisor":
		return submission.Project.SupervisorID == userID, nil
	case "student":
		var count int64
		if err := s.db.Model(&models.StudentGroup{}).
			Where("group_id = ? AND student_id = ?", submission.Project.GroupID, userID).
			Count(&count).Error; err != nil {
			return false, response.NewPersistence(err)
		}
		return count > 0, nil
	}
	return false, nil
}
