package services

import (
	"errors"

	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/pkg/response"
	"gorm.io/gorm"
)

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type AdminDashboard struct {
	TotalUsers         int64            `json:"total_users"`
	PendingUsers       int64            `json:"pending_users"`
	TotalGroups        int64            `json:"total_groups"`
	ActiveGroups       int64            `json:"active_groups"`
	ProjectsByStatus   map[string]int64 `json:"projects_by_status"`
	PendingSubmissions int64            `json:"pending_submissions"`
}

type SupervisorDashboard struct {
	GroupCount         int64               `json:"group_count"`
	PendingProposals   int64               `json:"pending_proposals"`
	ActiveProjects     int64               `json:"active_projects"`
	PendingSubmissions int64               `json:"pending_submissions"`
	RecentSubmissions  []models.Submission `json:"recent_submissions"`
}

type StudentDashboard struct {
	Group             *models.Group      `json:"group"`
	Project           *models.Project    `json:"project"`
	PendingMilestones []models.Milestone `json:"pending_milestones"`
	RecentHistory     []models.ProjectHistory `json:"recent_history"`
}

func (s *DashboardService) Admin() (*AdminDashboard, error) {
	d := &AdminDashboard{ProjectsByStatus: make(map[string]int64)}

	s.db.Model(&models.User{}).Count(&d.TotalUsers)
	s.db.Model(&models.User{}).Where("status_id = ?", models.StatusPending).Count(&d.PendingUsers)
	s.db.Model(&models.Group{}).Count(&d.TotalGroups)
	s.db.Model(&models.Group{}).Where("status = ?", models.GroupActive).Count(&d.ActiveGroups)
	s.db.Model(&models.Submission{}).Where("review_status = ?", models.ReviewPending).Count(&d.PendingSubmissions)

	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	if err := s.db.Model(&models.Project{}).
		Select("status, count(*) as count").
		Group("status").Scan(&rows).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	for _, row := range rows {
		d.ProjectsByStatus[row.Status] = row.Count
	}

	return d, nil
}

func (s *DashboardService) Supervisor(supervisorID uint) (*SupervisorDashboard, error) {
	d := &SupervisorDashboard{}

	s.db.Model(&models.Group{}).
		Where("supervisor_id = ? AND status = ?", supervisorID, models.GroupActive).
		Count(&d.GroupCount)
	s.db.Model(&models.Project{}).
		Where("supervisor_id = ? AND status = ?", supervisorID, models.ProjectProposalSubmitted).
		Count(&d.PendingProposals)
	s.db.Model(&models.Project{}).
		Where("supervisor_id = ? AND status = ?", supervisorID, models.ProjectAccepted).
		Count(&d.ActiveProjects)

	if err := s.db.Model(&models.Submission{}).
		Joins("JOIN projects ON projects.id = submissions.project_id").
		Where("projects.supervisor_id = ? AND submissions.review_status = ?",
			supervisorID, models.ReviewPending).
		Count(&d.PendingSubmissions).Error; err != nil {
		return nil, response.NewPersistence(err)
	}

	if err := s.db.Preload("Milestone").
		Joins("JOIN projects ON projects.id = submissions.project_id").
		Where("projects.supervisor_id = ?", supervisorID).
		Order("submissions.submitted_at DESC").Limit(5).
		Find(&d.RecentSubmissions).Error; err != nil {
		return nil, response.NewPersistence(err)
	}

	return d, nil
}

func (s *DashboardService) Student(studentID uint) (*StudentDashboard, error) {
	d := &StudentDashboard{}

	var membership models.StudentGroup
	err := s.db.Where("student_id = ?", studentID).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return d, nil
	}
	if err != nil {
		return nil, response.NewPersistence(err)
	}

	var group models.Group
	if err := s.db.Preload("Supervisor").First(&group, membership.GroupID).Error; err == nil {
		d.Group = &group
	}

	var project models.Project
	err = s.db.Where("group_id = ? AND status IN ?", membership.GroupID,
		[]string{models.ProjectProposalSubmitted, models.ProjectAccepted}).
		Order("created_at DESC").First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return d, nil
		}
		return nil, response.NewPersistence(err)
	}
	d.Project = &project

	if err := s.db.Where("project_id = ? AND status = ?", project.ID, models.MilestonePending).
		Order("due_date ASC").Find(&d.PendingMilestones).Error; err != nil {
		return nil, response.NewPersistence(err)
	}

	if err := s.db.Where("project_id = ?", project.ID).
		Order("action_date DESC, id DESC").Limit(5).
		Find(&d.RecentHistory).Error; err != nil {
		return nil, response.NewPersistence(err)
	}

	return d, nil
}
