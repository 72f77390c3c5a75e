package handlers

import (
	"strconv"

	"github.com/dissertrack/backend/internal/middleware"
	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/internal/services"
	"github.com/dissertrack/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db),
	}
}

// List returns projects visible to the caller
// GET /api/v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var req services.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.projectService.List(middleware.GetUserID(c), middleware.GetRole(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// Get returns one project
// GET /api/v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.loadAuthorized(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// SubmitProposal lets a student propose a project
// POST /api/v1/projects/proposals
func (h *ProjectHandler) SubmitProposal(c *gin.Context) {
	var req services.ProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.SubmitProposal(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// ReviewProposal records the supervisor's decision
// PUT /api/v1/projects/:id/proposal-review
func (h *ProjectHandler) ReviewProposal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req services.ReviewProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.ReviewProposal(middleware.GetUserID(c), uint(id), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// Create registers a project directly (supervisor)
// POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// Complete marks a project completed
// PUT /api/v1/projects/:id/complete
func (h *ProjectHandler) Complete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	project, err := h.projectService.Complete(middleware.GetUserID(c), uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// History returns the project's audit trail
// GET /api/v1/projects/:id/history
func (h *ProjectHandler) History(c *gin.Context) {
	project, err := h.loadAuthorized(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries, err := h.projectService.History(project.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, entries)
}

// loadAuthorized fetches the :id project and verifies read access.
func (h *ProjectHandler) loadAuthorized(c *gin.Context) (*models.Project, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, response.NewValidation("invalid project id")
	}

	project, err := h.projectService.Get(uint(id))
	if err != nil {
		return nil, err
	}

	allowed, err := h.projectService.CanAccess(project, middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, response.NewPermission("you do not have access to this project")
	}
	return project, nil
}
