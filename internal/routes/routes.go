package routes

import (
	"github.com/gin-gonic/gin"

	"janmitra/internal/authz"
	"janmitra/internal/handlers"
	"janmitra/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	categoryHandler *handlers.CategoryHandler,
	workflowHandler *handlers.WorkflowHandler,
	taskHandler *handlers.TaskHandler,
	eventHandler *handlers.EventHandler,
	reportHandler *handlers.ReportHandler,
	publicHandler *handlers.PublicHandler,
	officeHandler *handlers.OfficeHandler,
	integrationsHandler *handlers.IntegrationsHandler, // nil when no bot token configured
) *gin.Engine {

	// ---- public
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)
	r.GET("/public/track/:code", publicHandler.Track)

	if integrationsHandler != nil {
		r.POST("/integrations/telegram/webhook", integrationsHandler.Webhook)
	}

	// ---- protected
	r.Use(middleware.AuthMiddleware())
	r.Use(middleware.ReadOnlyGuard())

	// CATEGORIES (manager/admin manage, everyone reads)
	categories := r.Group("/categories")
	{
		categories.GET("/", categoryHandler.List)
		categories.GET("/:id", categoryHandler.GetByID)

		admin := categories.Group("", middleware.RequireRoles(authz.RoleOfficeManager, authz.RoleSuperAdmin))
		{
			admin.POST("/", categoryHandler.Create)
			admin.PUT("/:id", categoryHandler.Update)
			admin.DELETE("/:id", categoryHandler.Delete)
		}
	}

	// WORKFLOW TEMPLATES (manager/admin)
	workflows := r.Group("/workflows",
		middleware.RequireRoles(authz.RoleOfficeManager, authz.RoleAudit, authz.RoleSuperAdmin),
	)
	{
		workflows.POST("/", workflowHandler.Create)
		workflows.GET("/", workflowHandler.List)
		workflows.GET("/:id", workflowHandler.GetByID)
	}

	// TASKS
	tasks := r.Group("/tasks",
		middleware.RequireRoles(authz.RoleFieldStaff, authz.RoleOfficeManager, authz.RoleAudit, authz.RoleSuperAdmin),
	)
	{
		tasks.POST("/", taskHandler.Create)
		tasks.GET("/", taskHandler.GetAll)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.POST("/:id/status", taskHandler.ChangeStatus)
		tasks.GET("/:id/steps", taskHandler.ListSteps)
		tasks.POST("/:id/steps/:step_id/complete", taskHandler.CompleteStep)
		tasks.GET("/:id/receipt", taskHandler.Receipt)

		tasks.DELETE("/:id", middleware.RequireRoles(authz.RoleOfficeManager, authz.RoleSuperAdmin), taskHandler.Delete)
	}

	// EVENTS
	events := r.Group("/events",
		middleware.RequireRoles(authz.RoleFieldStaff, authz.RoleOfficeManager, authz.RoleAudit, authz.RoleSuperAdmin),
	)
	{
		events.POST("/", eventHandler.Create)
		events.GET("/", eventHandler.GetAll)
		events.GET("/:id", eventHandler.GetByID)
		events.POST("/:id/approvals/:level/decide",
			middleware.RequireRoles(authz.RoleOfficeManager, authz.RoleSuperAdmin), eventHandler.Decide)
	}

	// OFFICES (reads for all roles, creation is super admin only)
	offices := r.Group("/offices")
	{
		offices.GET("/", officeHandler.List)
		offices.GET("/:id", officeHandler.GetByID)
		offices.POST("/", middleware.RequireRoles(authz.RoleSuperAdmin), officeHandler.Create)
	}

	// USERS (manager/admin)
	users := r.Group("/users", middleware.RequireRoles(authz.RoleOfficeManager, authz.RoleSuperAdmin))
	{
		users.POST("/", userHandler.CreateUser)
		users.GET("/", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUserByID)
	}

	// REPORTS (audit/manager/admin)
	reports := r.Group("/reports",
		middleware.RequireRoles(authz.RoleAudit, authz.RoleOfficeManager, authz.RoleSuperAdmin),
	)
	{
		reports.GET("/summary", reportHandler.GetSummary)
		reports.GET("/sla", reportHandler.ListOverdue)
		reports.GET("/leaderboard", reportHandler.Leaderboard)
	}

	return r
}
