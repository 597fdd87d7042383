package app

import (
	"database/sql"
	"fmt"
	"log"

	"janmitra/internal/config"
	"janmitra/internal/handlers"
	"janmitra/internal/pdf"
	"janmitra/internal/repositories"
	"janmitra/internal/routes"
	"janmitra/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "janmitra/docs"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	// === Repos ===
	categoryRepo := repositories.NewCategoryRepository(db)
	workflowRepo := repositories.NewWorkflowRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	userRepo := repositories.NewUserRepository(db)
	officeRepo := repositories.NewOfficeRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	var tgService *services.TelegramService
	if cfg.Telegram.BotToken != "" {
		tgService = services.NewTelegramService(cfg.Telegram.BotToken)
		if cfg.Telegram.WebhookURL != "" {
			if err := tgService.SetWebhook(cfg.Telegram.WebhookURL); err != nil {
				log.Printf("[app][warn] telegram setWebhook failed: %v", err)
			}
		}
	}

	categoryService := services.NewCategoryService(categoryRepo)
	workflowService := services.NewWorkflowService(workflowRepo, categoryRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, workflowService, emailService, tgService)
	eventService := services.NewEventService(eventRepo)
	userService := services.NewUserService(userRepo, authService)
	reportService := services.NewReportService(taskRepo, userRepo)

	receiptGen := pdf.NewReceiptGenerator(cfg.Files.RootDir, "Janmitra Office Desk")

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService)
	userHandler := handlers.NewUserHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	workflowHandler := handlers.NewWorkflowHandler(workflowService)
	taskHandler := handlers.NewTaskHandler(taskService, receiptGen)
	eventHandler := handlers.NewEventHandler(eventService)
	reportHandler := handlers.NewReportHandler(reportService)
	publicHandler := handlers.NewPublicHandler(taskService)
	officeHandler := handlers.NewOfficeHandler(officeRepo)

	var integrationsHandler *handlers.IntegrationsHandler
	if tgService != nil {
		integrationsHandler = handlers.NewIntegrationsHandler(
			taskService, tgService, cfg.Telegram.OfficeID, cfg.Telegram.DefaultCategory)
	}

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Routes (JWT/RBAC inside SetupRoutes)
	routes.SetupRoutes(
		router,
		authHandler,
		userHandler,
		categoryHandler,
		workflowHandler,
		taskHandler,
		eventHandler,
		reportHandler,
		publicHandler,
		officeHandler,
		integrationsHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("failed to start server: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
