package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/pkg/response"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type UserListRequest struct {
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	Role     string `form:"role"`   // admin, supervisor, student
	Status   string `form:"status"` // pending, rejected, inactive, blocked, active
	Search   string `form:"search"` // matches username, email, student number
}

type UserListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.User `json:"items"`
}

var statusIDByName = map[string]uint{
	"pending":  models.StatusPending,
	"rejected": models.StatusRejected,
	"inactive": models.StatusInactive,
	"blocked":  models.StatusBlocked,
	"active":   models.StatusActive,
}

var roleIDByName = map[string]uint{
	"admin":      models.RoleAdmin,
	"supervisor": models.RoleSupervisor,
	"student":    models.RoleStudent,
}

func (s *UserService) List(req *UserListRequest) (*UserListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.User{}).Preload("Profile")

	if req.Role != "" {
		roleID, ok := roleIDByName[req.Role]
		if !ok {
			return nil, response.NewValidation("unknown role filter")
		}
		query = query.Where("role_id = ?", roleID)
	}
	if req.Status != "" {
		statusID, ok := statusIDByName[req.Status]
		if !ok {
			return nil, response.NewValidation("unknown status filter")
		}
		query = query.Where("status_id = ?", statusID)
	}
	if req.Search != "" {
		pattern := "%" + req.Search + "%"
		query = query.Where("username LIKE ? OR email LIKE ? OR student_number LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, response.NewPersistence(err)
	}

	return &UserListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    users,
	}, nil
}

// allowedStatusTransitions encodes the account lifecycle. Anything not
// listed here is rejected.
var allowedStatusTransitions = map[uint][]uint{
	models.StatusPending:  {models.StatusActive, models.StatusRejected},
	models.StatusActive:   {models.StatusBlocked, models.StatusInactive},
	models.StatusBlocked:  {models.StatusActive},
	models.StatusRejected: {models.StatusActive},
	models.StatusInactive: {models.StatusActive},
}

// ChangeStatus moves an account through its lifecycle. Administrators
// cannot change their own status.
func (s *UserService) ChangeStatus(actorID, userID uint, newStatus string) (*models.User, error) {
	statusID, ok := statusIDByName[newStatus]
	if !ok {
		return nil, response.NewValidation("unknown status")
	}

	if actorID == userID {
		return nil, response.NewPermission("cannot change your own account status")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, response.NewPersistence(err)
	}

	if user.RoleID == models.RoleAdmin {
		return nil, response.NewPermission("administrator accounts cannot be moderated")
	}

	if !transitionAllowed(user.StatusID, statusID) {
		return nil, response.NewConflict(fmt.Sprintf("cannot move account from %s to %s",
			statusName(user.StatusID), statusName(statusID)))
	}

	if err := s.db.Model(&user).Update("status_id", statusID).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	user.StatusID = statusID
	return &user, nil
}

func transitionAllowed(from, to uint) bool {
	for _, allowed := range allowedStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func statusName(id uint) string {
	for name, sid := range statusIDByName {
		if sid == id {
			return name
		}
	}
	return "unknown"
}

type ProfileUpdateRequest struct {
	FirstName   string `json:"first_name" binding:"max=100"`
	LastName    string `json:"last_name" binding:"max=100"`
	ContactInfo string `json:"contact_info" binding:"max=255"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
	CNIC        string `json:"cnic" binding:"max=50"`
	ImagePath   string `json:"image_path" binding:"max=500"`
}

// UpsertProfile creates or updates the profile row for a user.
func (s *UserService) UpsertProfile(userID uint, req *ProfileUpdateRequest) (*models.Profile, error) {
	var dob *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, response.NewValidation("date_of_birth must be YYYY-MM-DD")
		}
		dob = &parsed
	}

	var profile models.Profile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewPersistence(err)
	}

	profile.UserID = userID
	profile.FirstName = req.FirstName
	profile.LastName = req.LastName
	profile.ContactInfo = req.ContactInfo
	profile.DateOfBirth = dob
	profile.CNIC = req.CNIC
	if req.ImagePath != "" {
		profile.ImagePath = req.ImagePath
	}

	if err := s.db.Save(&profile).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	return &profile, nil
}

func (s *UserService) GetProfile(userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("profile not found")
		}
		return nil, response.NewPersistence(err)
	}
	return &profile, nil
}

// ListDepartments returns the seeded department lookup.
func (s *UserService) ListDepartments() ([]models.Department, error) {
	var departments []models.Department
	if err := s.db.Order("id").Find(&departments).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	return departments, nil
}

// ListSupervisors returns active supervisors with their group load,
// used by administrators when assigning groups.
func (s *UserService) ListSupervisors() ([]models.User, error) {
	var supervisors []models.User
	if err := s.db.Where("role_id = ? AND status_id = ?", models.RoleSupervisor, models.StatusActive).
		Order("username").Find(&supervisors).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	return supervisors, nil
}
