package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/pkg/response"
	"gorm.io/gorm"
)

type FeedbackService struct {
	db *gorm.DB
}

func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{db: db}
}

type SendFeedbackRequest struct {
	ProjectID  uint   `json:"project_id" binding:"required"`
	ReceiverID uint   `json:"receiver_id" binding:"required"`
	Text       string `json:"text" binding:"required"`
	FilePath   string `json:"file_path"`
}

// Send posts a feedback message on a project. Sender and receiver must
// both be in the project's context: its supervisor or a group member.
func (s *FeedbackService) Send(senderID uint, role string, req *SendFeedbackRequest) (*models.Feedback, error) {
	var project models.Project
	if err := s.db.First(&project, req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, response.NewPersistence(err)
	}

	senderOK, err := s.inProjectContext(&project, senderID)
	if err != nil {
		return nil, err
	}
	if !senderOK && role != "admin" {
		return nil, response.NewPermission("you are not part of this project")
	}

	receiverOK, err := s.inProjectContext(&project, req.ReceiverID)
	if err != nil {
		return nil, err
	}
	if !receiverOK {
		return nil, response.NewValidation("receiver is not part of this project")
	}

	feedback := models.Feedback{
		ProjectID:  project.ID,
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
		FilePath:   req.FilePath,
		SentAt:     time.Now(),
	}
	if err := s.db.Create(&feedback).Error; err != nil {
		return nil, response.NewPersistence(err)
	}

	Notify(models.NotifyFeedback, "New feedback",
		fmt.Sprintf("You have new feedback on %q.", project.Title),
		&project.ID, req.ReceiverID)

	return &feedback, nil
}

// inProjectContext reports whether a user is the project's supervisor
// or a member of its group.
func (s *FeedbackService) inProjectContext(project *models.Project, userID uint) (bool, error) {
	if project.SupervisorID == userID {
		return true, nil
	}
	var count int64
	if err := s.db.Model(&models.StudentGroup{}).
		Where("group_id = ? AND student_id = ?", project.GroupID, userID).
		Count(&count).Error; err != nil {
		return false, response.NewPersistence(err)
	}
	return count > 0, nil
}

// ListByProject returns a project's feedback thread, oldest first.
func (s *FeedbackService) ListByProject(projectID, userID uint, role string) ([]models.Feedback, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, response.NewPersistence(err)
	}

	if role != "admin" {
		ok, err := s.inProjectContext(&project, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, response.NewPermission("you are not part of this project")
		}
	}

	var feedback []models.Feedback
	if err := s.db.Where("project_id = ?", projectID).
		Order("sent_at ASC, id ASC").Find(&feedback).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	return feedback, nil
}
