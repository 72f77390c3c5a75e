package services

import (
	"errors"
	"time"

	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/pkg/response"
	"gorm.io/gorm"
)

type GroupService struct {
	db *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

type CreateGroupRequest struct {
	Name         string `json:"name" binding:"required,max=200"`
	SupervisorID uint   `json:"supervisor_id" binding:"required"`
	Description  string `json:"description"`
	StudentIDs   []uint `json:"student_ids"`
}

// Create creates a group under a supervisor. The capacity check and the
// denormalized group_count update happen inside the same transaction so
// concurrent creations cannot push a supervisor past the cap.
func (s *GroupService) Create(req *CreateGroupRequest) (*models.Group, error) {
	var group models.Group

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var supervisor models.User
		if err := tx.First(&supervisor, req.SupervisorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("supervisor not found")
			}
			return err
		}
		if supervisor.RoleID != models.RoleSupervisor {
			return response.NewValidation("assigned user is not a supervisor")
		}
		if supervisor.StatusID != models.StatusActive {
			return response.NewValidation("supervisor account is not active")
		}

		// Inactive groups still count against the cap.
		var owned int64
		if err := tx.Model(&models.Group{}).
			Where("supervisor_id = ?", req.SupervisorID).
			Count(&owned).Error; err != nil {
			return err
		}
		if owned >= models.MaxGroupsPerSupervisor {
			return response.NewConflict("supervisor already manages the maximum number of groups")
		}

		group = models.Group{
			Name:         req.Name,
			SupervisorID: req.SupervisorID,
			Status:       models.GroupActive,
			Description:  req.Description,
		}
		if err := tx.Create(&group).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", req.SupervisorID).
			Update("group_count", gorm.Expr("group_count + 1")).Error; err != nil {
			return err
		}

		for _, studentID := range req.StudentIDs {
			if err := addMember(tx, group.ID, studentID); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, wrapErr(err)
	}

	return &group, nil
}

// addMember validates and inserts a membership row within tx.
func addMember(tx *gorm.DB, groupID, studentID uint) error {
	var student models.User
	if err := tx.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("student not found")
		}
		return err
	}
	if student.RoleID != models.RoleStudent {
		return response.NewValidation("only students can join groups")
	}
	if student.StatusID != models.StatusActive {
		return response.NewValidation("student account is not active")
	}

	var existing int64
	if err := tx.Model(&models.StudentGroup{}).
		Where("student_id = ?", studentID).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return response.NewConflict("student already belongs to a group")
	}

	membership := models.StudentGroup{
		GroupID:   groupID,
		StudentID: studentID,
		Status:    models.MembershipActive,
		JoinedAt:  time.Now(),
	}
	return tx.Create(&membership).Error
}

// AddStudent adds one student to an existing group.
func (s *GroupService) AddStudent(groupID, studentID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("group not found")
			}
			return err
		}
		if group.Status != models.GroupActive {
			return response.NewConflict("group is not active")
		}
		return addMember(tx, groupID, studentID)
	})

	if err != nil {
		return wrapErr(err)
	}

	// A student joining a group should hear about it.
	Notify(models.NotifyGroupMembership, "Added to group",
		"You have been added to a supervision group.", nil, studentID)
	return nil
}

// RemoveStudent removes a student from a group.
func (s *GroupService) RemoveStudent(groupID, studentID uint) error {
	result := s.db.Where("group_id = ? AND student_id = ?", groupID, studentID).
		Delete(&models.StudentGroup{})
	if result.Error != nil {
		return response.NewPersistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("student is not a member of this group")
	}

	Notify(models.NotifyGroupMembership, "Removed from group",
		"You have been removed from your supervision group.", nil, studentID)
	return nil
}

// ChangeSupervisor reassigns a group to another supervisor. Both group
// counters and the group row change in one transaction.
func (s *GroupService) ChangeSupervisor(groupID, newSupervisorID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("group not found")
			}
			return err
		}
		if group.SupervisorID == newSupervisorID {
			return response.NewValidation("group is already assigned to this supervisor")
		}

		var supervisor models.User
		if err := tx.First(&supervisor, newSupervisorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("supervisor not found")
			}
			return err
		}
		if supervisor.RoleID != models.RoleSupervisor {
			return response.NewValidation("assigned user is not a supervisor")
		}
		if supervisor.StatusID != models.StatusActive {
			return response.NewValidation("supervisor account is not active")
		}

		var owned int64
		if err := tx.Model(&models.Group{}).
			Where("supervisor_id = ?", newSupervisorID).
			Count(&owned).Error; err != nil {
			return err
		}
		if owned >= models.MaxGroupsPerSupervisor {
			return response.NewConflict("supervisor already manages the maximum number of groups")
		}

		oldSupervisorID := group.SupervisorID
		if err := tx.Model(&group).Update("supervisor_id", newSupervisorID).Error; err != nil {
			return err
		}
		// Ownership checks read the denormalized supervisor on the
		// project row, so the group's projects move with the group.
		if err := tx.Model(&models.Project{}).Where("group_id = ?", groupID).
			Update("supervisor_id", newSupervisorID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", oldSupervisorID).
			Update("group_count", gorm.Expr("CASE WHEN group_count > 0 THEN group_count - 1 ELSE 0 END")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", newSupervisorID).
			Update("group_count", gorm.Expr("group_count + 1")).Error
	})

	if err != nil {
		return wrapErr(err)
	}
	return nil
}

// Deactivate marks a group inactive. The group still counts against
// its supervisor's cap.
func (s *GroupService) Deactivate(groupID uint) error {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("group not found")
		}
		return response.NewPersistence(err)
	}
	if group.Status == models.GroupInactive {
		return response.NewConflict("group is already inactive")
	}

	if err := s.db.Model(&group).Update("status", models.GroupInactive).Error; err != nil {
		return response.NewPersistence(err)
	}
	return nil
}

type GroupListRequest struct {
	Page         int    `form:"page" binding:"min=0"`
	PageSize     int    `form:"page_size" binding:"min=0,max=100"`
	SupervisorID uint   `form:"supervisor_id"`
	Status       string `form:"status"`
	Search       string `form:"search"`
}

type GroupListResponse struct {
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Items    []models.Group `json:"items"`
}

func (s *GroupService) List(req *GroupListRequest) (*GroupListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Group{}).Preload("Supervisor")
	if req.SupervisorID != 0 {
		query = query.Where("supervisor_id = ?", req.SupervisorID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Search != "" {
		query = query.Where("name LIKE ?", "%"+req.Search+"%")
	}

	var total int64
	query.Count(&total)

	var groups []models.Group
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&groups).Error; err != nil {
		return nil, response.NewPersistence(err)
	}

	return &GroupListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    groups,
	}, nil
}

// Get returns a group with its supervisor and members.
func (s *GroupService) Get(groupID uint) (*models.Group, []models.StudentGroup, error) {
	var group models.Group
	if err := s.db.Preload("Supervisor").First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFound("group not found")
		}
		return nil, nil, response.NewPersistence(err)
	}

	var members []models.StudentGroup
	if err := s.db.Preload("Student").Where("group_id = ?", groupID).Find(&members).Error; err != nil {
		return nil, nil, response.NewPersistence(err)
	}
	return &group, members, nil
}

// GroupForStudent returns the group a student belongs to, if any.
func (s *GroupService) GroupForStudent(studentID uint) (*models.Group, error) {
	var membership models.StudentGroup
	if err := s.db.Where("student_id = ?", studentID).First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("student does not belong to a group")
		}
		return nil, response.NewPersistence(err)
	}

	var group models.Group
	if err := s.db.Preload("Supervisor").First(&group, membership.GroupID).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	return &group, nil
}

// MemberIDs returns the student ids of a group's members.
func (s *GroupService) MemberIDs(groupID uint) ([]uint, error) {
	var ids []uint
	if err := s.db.Model(&models.StudentGroup{}).
		Where("group_id = ?", groupID).
		Pluck("student_id", &ids).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	return ids, nil
}
