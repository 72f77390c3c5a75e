package handlers

import (
	"strconv"

	"github.com/dissertrack/backend/internal/middleware"
	"github.com/dissertrack/backend/internal/services"
	"github.com/dissertrack/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		userService: services.NewUserService(db),
	}
}

// List returns the account directory with filters
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	var req services.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.userService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStatus moves an account through its lifecycle
// PUT /api/v1/users/:id/status
func (h *UserHandler) ChangeStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.ChangeStatus(middleware.GetUserID(c), uint(id), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// ListSupervisors returns active supervisors for group assignment
// GET /api/v1/users/supervisors
func (h *UserHandler) ListSupervisors(c *gin.Context) {
	supervisors, err := h.userService.ListSupervisors()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, supervisors)
}

// ListDepartments returns the department lookup
// GET /api/v1/departments
func (h *UserHandler) ListDepartments(c *gin.Context) {
	departments, err := h.userService.ListDepartments()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, departments)
}

// GetProfile returns the caller's profile
// GET /api/v1/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.userService.GetProfile(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

// UpdateProfile creates or updates the caller's profile
// PUT /api/v1/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.userService.UpsertProfile(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}
