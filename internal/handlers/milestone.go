package handlers

import (
	"strconv"

	"github.com/dissertrack/backend/internal/middleware"
	"github.com/dissertrack/backend/internal/services"
	"github.com/dissertrack/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MilestoneHandler struct {
	milestoneService *services.MilestoneService
	projectService   *services.ProjectService
}

func NewMilestoneHandler(db *gorm.DB) *MilestoneHandler {
	return &MilestoneHandler{
		milestoneService: services.NewMilestoneService(db),
		projectService:   services.NewProjectService(db),
	}
}

// Create adds a milestone to a project (supervisor)
// POST /api/v1/milestones
func (h *MilestoneHandler) Create(c *gin.Context) {
	var req services.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	milestone, err := h.milestoneService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, milestone)
}

// ListByProject returns a project's milestones
// GET /api/v1/projects/:id/milestones
func (h *MilestoneHandler) ListByProject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	project, err := h.projectService.Get(uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	allowed, err := h.projectService.CanAccess(project, middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !allowed {
		response.Forbidden(c, "you do not have access to this project")
		return
	}

	milestones, err := h.milestoneService.ListByProject(project.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, milestones)
}
