package handlers

import (
	"github.com/dissertrack/backend/internal/middleware"
	"github.com/dissertrack/backend/internal/services"
	"github.com/dissertrack/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: services.NewDashboardService(db),
	}
}

// Get returns role-appropriate dashboard stats
// GET /api/v1/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)

	switch middleware.GetRole(c) {
	case "admin":
		stats, err := h.dashboardService.Admin()
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, stats)
	case "supervisor":
		stats, err := h.dashboardService.Supervisor(userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, stats)
	case "student":
		stats, err := h.dashboardService.Student(userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, stats)
	default:
		response.Forbidden(c, "unknown role")
	}
}
