package handlers

import (
	"net/http"
	"strconv"

	"github.com/dissertrack/backend/internal/middleware"
	"github.com/dissertrack/backend/internal/services"
	"github.com/dissertrack/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// maxUploadBytes caps a single deliverable upload at 50 MB.
const maxUploadBytes = 50 << 20

type SubmissionHandler struct {
	submissionService *services.SubmissionService
	projectService    *services.ProjectService
	storage           *services.StorageService
}

func NewSubmissionHandler(db *gorm.DB, storage *services.StorageService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: services.NewSubmissionService(db, storage),
		projectService:    services.NewProjectService(db),
		storage:           storage,
	}
}

// Submit records a deliverable with its files (student, multipart)
// POST /api/v1/submissions
func (h *SubmissionHandler) Submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "invalid multipart form: "+err.Error())
		return
	}

	milestoneID, err := strconv.ParseUint(c.PostForm("milestone_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "milestone_id is required")
		return
	}
	submissionType := c.PostForm("submission_type")
	remarks := c.PostForm("remarks")

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		response.BadRequest(c, "at least one file is required")
		return
	}

	var staged []*services.StagedFile
	for _, fh := range fileHeaders {
		sf, err := h.storage.Stage(fh)
		if err != nil {
			h.storage.Discard(staged)
			response.Error(c, err)
			return
		}
		staged = append(staged, sf)
	}

	submission, err := h.submissionService.Submit(middleware.GetUserID(c), &services.SubmitRequest{
		MilestoneID:    uint(milestoneID),
		SubmissionType: submissionType,
		Remarks:        remarks,
		Files:          staged,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}

// Review records the supervisor's verdict on a submission
// PUT /api/v1/submissions/:id/review
func (h *SubmissionHandler) Review(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid submission id")
		return
	}

	var req services.ReviewSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	submission, err := h.submissionService.Review(middleware.GetUserID(c), uint(id), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, submission)
}

// Get returns a submission with its files
// GET /api/v1/submissions/:id
func (h *SubmissionHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid submission id")
		return
	}

	submission, err := h.submissionService.Get(uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	allowed, err := h.projectService.CanAccess(submission.Project, middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !allowed {
		response.Forbidden(c, "you do not have access to this submission")
		return
	}
	response.Success(c, submission)
}

// ListByProject returns a project's submissions
// GET /api/v1/projects/:id/submissions
func (h *SubmissionHandler) ListByProject(c *gin.Context) {
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

	submissions, err := h.submissionService.ListByProject(project.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, submissions)
}

// ListPending returns the supervisor's unreviewed submissions
// GET /api/v1/submissions/pending
func (h *SubmissionHandler) ListPending(c *gin.Context) {
	submissions, err := h.submissionService.PendingForSupervisor(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, submissions)
}
