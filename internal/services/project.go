package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type ProposalRequest struct {
	Title       string `json:"title" binding:"required,max=300"`
	Description string `json:"description" binding:"required"`
	Objectives  string `json:"objectives"`
}

// SubmitProposal lets a student propose a project for their group. The
// project row and its first history entry commit together.
func (s *ProjectService) SubmitProposal(studentID uint, req *ProposalRequest) (*models.Project, error) {
	var membership models.StudentGroup
	if err := s.db.Where("student_id = ?", studentID).First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewValidation("you must belong to a group before proposing a project")
		}
		return nil, response.NewPersistence(err)
	}

	var group models.Group
	if err := s.db.First(&group, membership.GroupID).Error; err != nil {
		return nil, response.NewPersistence(err)
	}

	var pending int64
	if err := s.db.Model(&models.Project{}).
		Where("group_id = ? AND status IN ?", group.ID,
			[]string{models.ProjectProposalSubmitted, models.ProjectAccepted}).
		Count(&pending).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	if pending > 0 {
		return nil, response.NewConflict("group already has an open project")
	}

	project := models.Project{
		Title:        req.Title,
		Description:  req.Description,
		Objectives:   req.Objectives,
		GroupID:      group.ID,
		SupervisorID: group.SupervisorID,
		CreatedBy:    studentID,
		Status:       models.ProjectProposalSubmitted,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		return appendHistory(tx, project.ID, "Proposal Submitted", studentID, "", 0)
	}); err != nil {
		return nil, response.NewPersistence(err)
	}

	Notify(models.NotifyProposalReviewed, "New proposal",
		fmt.Sprintf("A proposal titled %q awaits your review.", project.Title),
		&project.ID, group.SupervisorID)

	return &project, nil
}

type ReviewProposalRequest struct {
	Decision string `json:"decision" binding:"required,oneof=accept reject"`
	Remarks  string `json:"remarks"`
}

// ReviewProposal records the supervisor's decision on a proposal.
// Re-reviewing a decided proposal is a conflict, not an overwrite.
func (s *ProjectService) ReviewProposal(supervisorID, projectID uint, req *ReviewProposalRequest) (*models.Project, error) {
	var project models.Project

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("project not found")
			}
			return err
		}
		if project.SupervisorID != supervisorID {
			return response.NewPermission("you do not supervise this project")
		}
		if project.Status != models.ProjectProposalSubmitted {
			return response.NewConflict("proposal has already been reviewed")
		}

		newStatus := models.ProjectAccepted
		action := "Proposal Accepted"
		if req.Decision == "reject" {
			newStatus = models.ProjectRejected
			action = "Proposal Rejected"
		}

		if err := tx.Model(&project).Update("status", newStatus).Error; err != nil {
			return err
		}
		project.Status = newStatus
		return appendHistory(tx, project.ID, action, supervisorID, "", 0)
	})

	if err != nil {
		return nil, wrapErr(err)
	}

	memberIDs, _ := NewGroupService(s.db).MemberIDs(project.GroupID)
	Notify(models.NotifyProposalReviewed, "Proposal reviewed",
		fmt.Sprintf("Your proposal %q was %s.", project.Title, historyVerb(project.Status)),
		&project.ID, memberIDs...)

	return &project, nil
}

func historyVerb(status string) string {
	if status == models.ProjectAccepted {
		return "accepted"
	}
	return "rejected"
}

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required,max=300"`
	Description string `json:"description" binding:"required"`
	Objectives  string `json:"objectives"`
	GroupID     uint   `json:"group_id" binding:"required"`
}

// Create registers a project directly for one of the supervisor's own
// groups. It starts in Accepted, skipping the proposal stage.
func (s *ProjectService) Create(supervisorID uint, req *CreateProjectRequest) (*models.Project, error) {
	var project models.Project

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, req.GroupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("group not found")
			}
			return err
		}
		if group.SupervisorID != supervisorID {
			return response.NewPermission("you do not supervise this group")
		}

		var open int64
		if err := tx.Model(&models.Project{}).
			Where("group_id = ? AND status IN ?", group.ID,
				[]string{models.ProjectProposalSubmitted, models.ProjectAccepted}).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return response.NewConflict("group already has an open project")
		}

		project = models.Project{
			Title:        req.Title,
			Description:  req.Description,
			Objectives:   req.Objectives,
			GroupID:      group.ID,
			SupervisorID: supervisorID,
			CreatedBy:    supervisorID,
			Status:       models.ProjectAccepted,
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		return appendHistory(tx, project.ID, "Project Registered", supervisorID, "", 0)
	})

	if err != nil {
		return nil, wrapErr(err)
	}

	memberIDs, _ := NewGroupService(s.db).MemberIDs(project.GroupID)
	Notify(models.NotifyProposalReviewed, "Project registered",
		fmt.Sprintf("Your supervisor registered the project %q.", project.Title),
		&project.ID, memberIDs...)

	return &project, nil
}

// Complete marks an accepted project as completed.
func (s *ProjectService) Complete(supervisorID, projectID uint) (*models.Project, error) {
	var project models.Project

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("project not found")
			}
			return err
		}
		if project.SupervisorID != supervisorID {
			return response.NewPermission("you do not supervise this project")
		}
		if project.Status != models.ProjectAccepted {
			return response.NewConflict("only accepted projects can be completed")
		}

		if err := tx.Model(&project).Update("status", models.ProjectCompleted).Error; err != nil {
			return err
		}
		project.Status = models.ProjectCompleted
		return appendHistory(tx, project.ID, "Project Completed", supervisorID, "", 0)
	})

	if err != nil {
		return nil, wrapErr(err)
	}
	return &project, nil
}

// appendHistory inserts one audit-trail row within tx. History rows are
// never updated afterwards.
func appendHistory(tx *gorm.DB, projectID uint, action string, userID uint, status string, daysLate int) error {
	entry := models.ProjectHistory{
		ProjectID:  projectID,
		Action:     action,
		ActionDate: time.Now(),
		UserID:     userID,
		Status:     status,
		DaysLate:   daysLate,
	}
	return tx.Create(&entry).Error
}

// History returns the audit trail for a project, oldest first.
func (s *ProjectService) History(projectID uint) ([]models.ProjectHistory, error) {
	if _, err := s.Get(projectID); err != nil {
		return nil, err
	}

	var entries []models.ProjectHistory
	if err := s.db.Where("project_id = ?", projectID).
		Order("action_date ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	return entries, nil
}

func (s *ProjectService) Get(projectID uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Group").First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, response.NewPersistence(err)
	}
	return &project, nil
}

type ProjectListRequest struct {
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	Status   string `form:"status"`
	GroupID  uint   `form:"group_id"`
	Search   string `form:"search"`
}

type ProjectListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Project `json:"items"`
}

// List returns projects visible to the caller: admins see everything,
// supervisors their own groups' projects, students their group's.
func (s *ProjectService) List(userID uint, role string, req *ProjectListRequest) (*ProjectListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Project{}).Preload("Group")

	switch role {
	case "admin":
		// no scoping
	case "supervisor":
		query = query.Where("supervisor_id = ?", userID)
	case "student":
		var membership models.StudentGroup
		if err := s.db.Where("student_id = ?", userID).First(&membership).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ProjectListResponse{Page: req.Page, PageSize: req.PageSize, Items: []models.Project{}}, nil
			}
			return nil, response.NewPersistence(err)
		}
		query = query.Where("group_id = ?", membership.GroupID)
	default:
		return nil, response.NewPermission("unknown role")
	}

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.GroupID != 0 {
		query = query.Where("group_id = ?", req.GroupID)
	}
	if req.Search != "" {
		query = query.Where("title LIKE ?", "%"+req.Search+"%")
	}

	var total int64
	query.Count(&total)

	var projects []models.Project
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, response.NewPersistence(err)
	}

	return &ProjectListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    projects,
	}, nil
}

// CanAccess reports whether a user may read a project. Admins always
// can; supervisors need ownership; students need group membership.
func (s *ProjectService) CanAccess(project *models.Project, userID uint, role string) (bool, error) {
	switch role {
	case "admin":
		return true, nil
	case "supervisor":
		return project.SupervisorID == userID, nil
	case "student":
		var count int64
		if err := s.db.Model(&models.StudentGroup{}).
			Where("group_id = ? AND student_id = ?", project.GroupID, userID).
			Count(&count).Error; err != nil {
			return false, response.NewPersistence(err)
		}
		return count > 0, nil
	}
	return false, nil
}
