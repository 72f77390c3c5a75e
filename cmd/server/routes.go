package main

import (
	"github.com/dissertrack/backend/internal/config"
	"github.com/dissertrack/backend/internal/handlers"
	"github.com/dissertrack/backend/internal/middleware"
	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for credential endpoints
	authLimiter := middleware.NewRateLimiter(5, 10)

	db := models.GetDB()

	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	api := r.Group("/api/v1")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// Protected routes (any authenticated role)
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			userHandler := handlers.NewUserHandler(db)
			protected.GET("/profile", userHandler.GetProfile)
			protected.PUT("/profile", userHandler.UpdateProfile)
			protected.GET("/departments", userHandler.ListDepartments)

			dashboardHandler := handlers.NewDashboardHandler(db)
			protected.GET("/dashboard", dashboardHandler.Get)

			projectHandler := handlers.NewProjectHandler(db)
			protected.GET("/projects", projectHandler.List)
			protected.GET("/projects/:id", projectHandler.Get)
			protected.GET("/projects/:id/history", projectHandler.History)

			milestoneHandler := handlers.NewMilestoneHandler(db)
			protected.GET("/projects/:id/milestones", milestoneHandler.ListByProject)

			submissionHandler := handlers.NewSubmissionHandler(db, svc.storage)
			protected.GET("/projects/:id/submissions", submissionHandler.ListByProject)
			protected.GET("/submissions/:id", submissionHandler.Get)

			feedbackHandler := handlers.NewFeedbackHandler(db)
			protected.POST("/feedback", feedbackHandler.Send)
			protected.GET("/projects/:id/feedback", feedbackHandler.ListByProject)

			fileHandler := handlers.NewFileHandler(db)
			protected.GET("/files/:id", fileHandler.Download)

			notificationHandler := handlers.NewNotificationHandler(db)
			protected.GET("/notifications", notificationHandler.List)
			protected.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			protected.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
		}

		// Student routes
		student := api.Group("")
		student.Use(middleware.AuthRequired(), middleware.RoleRequired("student"), middleware.AuditLog())
		{
			groupHandler := handlers.NewGroupHandler(db)
			student.GET("/groups/mine", groupHandler.MyGroup)

			projectHandler := handlers.NewProjectHandler(db)
			student.POST("/projects/proposals", projectHandler.SubmitProposal)

			submissionHandler := handlers.NewSubmissionHandler(db, svc.storage)
			student.POST("/submissions", submissionHandler.Submit)
		}

		// Supervisor routes
		supervisor := api.Group("")
		supervisor.Use(middleware.AuthRequired(), middleware.RoleRequired("supervisor"), middleware.AuditLog())
		{
			projectHandler := handlers.NewProjectHandler(db)
			supervisor.POST("/projects", projectHandler.Create)
			supervisor.PUT("/projects/:id/proposal-review", projectHandler.ReviewProposal)
			supervisor.PUT("/projects/:id/complete", projectHandler.Complete)

			milestoneHandler := handlers.NewMilestoneHandler(db)
			supervisor.POST("/milestones", milestoneHandler.Create)

			submissionHandler := handlers.NewSubmissionHandler(db, svc.storage)
			supervisor.GET("/submissions/pending", submissionHandler.ListPending)
			supervisor.PUT("/submissions/:id/review", submissionHandler.Review)
		}

		// Group management (admins and supervisors)
		groups := api.Group("")
		groups.Use(middleware.AuthRequired(), middleware.RoleRequired("admin", "supervisor"), middleware.AuditLog())
		{
			groupHandler := handlers.NewGroupHandler(db)
			groups.GET("/groups", groupHandler.List)
			groups.GET("/groups/:id", groupHandler.Get)
			groups.POST("/groups", groupHandler.Create)
			groups.POST("/groups/:id/members", groupHandler.AddStudent)
			groups.DELETE("/groups/:id/members/:studentId", groupHandler.RemoveStudent)

			userHandler := handlers.NewUserHandler(db)
			groups.GET("/users/supervisors", userHandler.ListSupervisors)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			userHandler := handlers.NewUserHandler(db)
			admin.GET("/users", userHandler.List)
			admin.PUT("/users/:id/status", userHandler.ChangeStatus)

			groupHandler := handlers.NewGroupHandler(db)
			admin.PUT("/groups/:id/supervisor", groupHandler.ChangeSupervisor)
			admin.DELETE("/groups/:id", groupHandler.Deactivate)

			auditLogHandler := handlers.NewAuditLogHandler(db)
			admin.GET("/audit-logs", auditLogHandler.List)
			admin.GET("/audit-logs/modules", auditLogHandler.GetModules)
		}
	}
}
