package services

import (
	"errors"
	"time"

	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/pkg/response"
	"gorm.io/gorm"
)

type MilestoneService struct {
	db *gorm.DB
}

func NewMilestoneService(db *gorm.DB) *MilestoneService {
	return &MilestoneService{db: db}
}

type CreateMilestoneRequest struct {
	ProjectID   uint   `json:"project_id" binding:"required"`
	Title       string `json:"title" binding:"required,max=300"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" binding:"required"` // YYYY-MM-DD
}

// Create adds a milestone to an accepted project the supervisor owns.
func (s *MilestoneService) Create(supervisorID uint, req *CreateMilestoneRequest) (*models.Milestone, error) {
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, response.NewValidation("due_date must be YYYY-MM-DD")
	}

	var project models.Project
	if err := s.db.First(&project, req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, response.NewPersistence(err)
	}
	if project.SupervisorID != supervisorID {
		return nil, response.NewPermission("you do not supervise this project")
	}
	if project.Status != models.ProjectAccepted {
		return nil, response.NewConflict("milestones can only be added to accepted projects")
	}

	milestone := models.Milestone{
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Status:      models.MilestonePending,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&milestone).Error; err != nil {
			return err
		}
		return appendHistory(tx, project.ID, "Milestone Created: "+milestone.Title, supervisorID, "", 0)
	}); err != nil {
		return nil, response.NewPersistence(err)
	}

	memberIDs, _ := NewGroupService(s.db).MemberIDs(project.GroupID)
	Notify(models.NotifyMilestoneDue, "New milestone",
		"A new milestone was added to your project: "+milestone.Title,
		&project.ID, memberIDs...)

	return &milestone, nil
}

// ListByProject returns a project's milestones ordered by due date.
func (s *MilestoneService) ListByProject(projectID uint) ([]models.Milestone, error) {
	var milestones []models.Milestone
	if err := s.db.Where("project_id = ?", projectID).
		Order("due_date ASC").Find(&milestones).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	return milestones, nil
}

func (s *MilestoneService) Get(milestoneID uint) (*models.Milestone, error) {
	var milestone models.Milestone
	if err := s.db.Preload("Project").First(&milestone, milestoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("milestone not found")
		}
		return nil, response.NewPersistence(err)
	}
	return &milestone, nil
}

// DueSoon returns pending milestones whose due date falls within the
// next leadDays, for the reminder scheduler.
func (s *MilestoneService) DueSoon(leadDays int) ([]models.Milestone, error) {
	// Due dates are stored at midnight UTC, so the lower bound must be
	// the start of the current day or milestones due today are missed.
	today := time.Now().UTC().Truncate(24 * time.Hour)
	horizon := today.AddDate(0, 0, leadDays)

	var milestones []models.Milestone
	if err := s.db.Preload("Project").
		Where("status = ? AND due_date >= ? AND due_date <= ?", models.MilestonePending, today, horizon).
		Find(&milestones).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	return milestones, nil
}
