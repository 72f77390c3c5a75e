package handlers

import (
	"strconv"

	"github.com/dissertrack/backend/internal/middleware"
	"github.com/dissertrack/backend/internal/services"
	"github.com/dissertrack/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FeedbackHandler struct {
	feedbackService *services.FeedbackService
}

func NewFeedbackHandler(db *gorm.DB) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: services.NewFeedbackService(db),
	}
}

// Send posts a feedback message on a project
// POST /api/v1/feedback
func (h *FeedbackHandler) Send(c *gin.Context) {
	var req services.SendFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	feedback, err := h.feedbackService.Send(middleware.GetUserID(c), middleware.GetRole(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, feedback)
}

// ListByProject returns a project's feedback thread
// GET /api/v1/projects/:id/feedback
func (h *FeedbackHandler) ListByProject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	feedback, err := h.feedbackService.ListByProject(uint(id), middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, feedback)
}
