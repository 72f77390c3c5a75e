package handlers

import (
	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/internal/services"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports subsystem status.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
// GET /api/v1/health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	var pendingReviews int64
	models.GetDB().Model(&models.Submission{}).
		Where("review_status = ?", models.ReviewPending).
		Count(&pendingReviews)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "dissertrack",
		"components": gin.H{
			"database":            dbStatus,
			"queue_mode":          queueMode,
			"pending_submissions": pendingReviews,
		},
	})
}
