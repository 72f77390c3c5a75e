package handlers

import (
	"strconv"

	"github.com/dissertrack/backend/internal/middleware"
	"github.com/dissertrack/backend/internal/services"
	"github.com/dissertrack/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GroupHandler struct {
	groupService *services.GroupService
}

func NewGroupHandler(db *gorm.DB) *GroupHandler {
	return &GroupHandler{
		groupService: services.NewGroupService(db),
	}
}

// List returns paginated groups
// GET /api/v1/groups
func (h *GroupHandler) List(c *gin.Context) {
	var req services.GroupListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// Supervisors only see their own groups.
	if middleware.GetRole(c) == "supervisor" {
		req.SupervisorID = middleware.GetUserID(c)
	}

	resp, err := h.groupService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// Get returns a group with its members
// GET /api/v1/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid group id")
		return
	}

	group, members, err := h.groupService.Get(uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"group":   group,
		"members": members,
	})
}

// Create creates a group under a supervisor
// POST /api/v1/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req services.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// A supervisor may only create groups for themselves.
	if middleware.GetRole(c) == "supervisor" {
		req.SupervisorID = middleware.GetUserID(c)
	}

	group, err := h.groupService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

type memberRequest struct {
	StudentID uint `json:"student_id" binding:"required"`
}

// AddStudent adds a student to a group
// POST /api/v1/groups/:id/members
func (h *GroupHandler) AddStudent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid group id")
		return
	}

	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authorizeGroup(c, uint(id)); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.groupService.AddStudent(uint(id), req.StudentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "student added to group"})
}

// RemoveStudent removes a student from a group
// DELETE /api/v1/groups/:id/members/:studentId
func (h *GroupHandler) RemoveStudent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid group id")
		return
	}
	studentID, err := strconv.ParseUint(c.Param("studentId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid student id")
		return
	}

	if err := h.authorizeGroup(c, uint(id)); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.groupService.RemoveStudent(uint(id), uint(studentID)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "student removed from group"})
}

type changeSupervisorRequest struct {
	SupervisorID uint `json:"supervisor_id" binding:"required"`
}

// ChangeSupervisor reassigns a group to another supervisor (admin only)
// PUT /api/v1/groups/:id/supervisor
func (h *GroupHandler) ChangeSupervisor(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid group id")
		return
	}

	var req changeSupervisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.groupService.ChangeSupervisor(uint(id), req.SupervisorID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "supervisor changed"})
}

// Deactivate marks a group inactive (admin only)
// DELETE /api/v1/groups/:id
func (h *GroupHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid group id")
		return
	}

	if err := h.groupService.Deactivate(uint(id)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "group deactivated"})
}

// MyGroup returns the student's own group
// GET /api/v1/groups/mine
func (h *GroupHandler) MyGroup(c *gin.Context) {
	group, err := h.groupService.GroupForStudent(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, group)
}

// authorizeGroup checks that a supervisor caller owns the group. Admins
// pass unconditionally.
func (h *GroupHandler) authorizeGroup(c *gin.Context, groupID uint) error {
	if middleware.GetRole(c) == "admin" {
		return nil
	}

	group, _, err := h.groupService.Get(groupID)
	if err != nil {
		return err
	}
	if group.SupervisorID != middleware.GetUserID(c) {
		return response.NewPermission("you do not supervise this group")
	}
	return nil
}
