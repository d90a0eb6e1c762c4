package main

import (
	"log"
	"time"

	"caseflow/config"
	"caseflow/db"
	"caseflow/handlers"
	"caseflow/repositories"
	"caseflow/services"
	"caseflow/services/events"
	"caseflow/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.MigrateAll(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed the practice area catalog
	if err := services.SeedPracticeAreas(db.DB); err != nil {
		log.Fatalf("Failed to seed practice areas: %v", err)
	}

	// Repositories
	caseRepo := repositories.NewCaseRepository(db.DB)
	lawyerRepo := repositories.NewLawyerRepository(db.DB)
	precedentRepo := repositories.NewPrecedentRepository(db.DB)
	areaRepo := repositories.NewPracticeAreaRepository(db.DB)

	// Domain services
	precedentAnalysis := services.NewPrecedentAnalysisService(precedentRepo, caseRepo)
	successRate := services.NewSuccessRateService(services.NewStrategyRegistry(), caseRepo, lawyerRepo, precedentAnalysis)
	feed := services.NewFeedService(db.DB)
	mailer := services.NewEmailService(cfg)
	documents := services.NewDocumentService(db.DB, services.NewStorage(cfg))

	// Event dispatch with the standard observer set
	dispatcher := events.NewDispatcher()
	dispatcher.Register(events.NewFollowerObserver(feed))
	dispatcher.Register(events.NewNotificationObserver(db.DB, feed, mailer))
	dispatcher.Register(events.NewDeadlineObserver(feed))
	dispatcher.Register(events.NewAuditObserver(db.DB))

	caseService := services.NewCaseService(
		db.DB,
		caseRepo,
		services.NewValidationChain(),
		services.NewStateMachine(),
		dispatcher,
		successRate,
		precedentAnalysis,
	)

	// Handlers
	caseHandler := handlers.NewCaseHandler(caseService, caseRepo, documents, feed, precedentAnalysis)
	precedentHandler := handlers.NewPrecedentHandler(db.DB, precedentRepo, precedentAnalysis)
	areaHandler := handlers.NewPracticeAreaHandler(areaRepo)
	lawyerHandler := handlers.NewLawyerHandler(lawyerRepo, caseRepo)

	// Create Echo instance
	e := echo.New()
	e.Validator = handlers.NewRequestValidator()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	api := e.Group("/api")
	{
		api.GET("/cases", caseHandler.List)
		api.POST("/cases", caseHandler.Create)
		api.GET("/cases/:id", caseHandler.Get)
		api.PUT("/cases/:id", caseHandler.Update)
		api.GET("/cases/:id/transitions", caseHandler.Transitions)
		api.GET("/cases/:id/similar", caseHandler.Similar)
		api.GET("/cases/:id/messages", caseHandler.Messages)
		api.POST("/cases/:id/messages", caseHandler.PostMessage)
		api.POST("/cases/:id/follow", caseHandler.Follow)
		api.DELETE("/cases/:id/follow", caseHandler.Unfollow)
		api.POST("/cases/:id/documents", caseHandler.UploadDocument)
		api.GET("/cases/:id/documents/:docId/download", caseHandler.DownloadDocument)
		api.DELETE("/cases/:id/documents/:docId", caseHandler.DeleteDocument)

		api.GET("/precedents", precedentHandler.List)
		api.POST("/precedents", precedentHandler.Create)
		api.GET("/precedents/analysis", precedentHandler.Analysis)
		api.GET("/precedents/import/template", precedentHandler.Template)
		api.POST("/precedents/import", precedentHandler.Import)
		api.GET("/precedents/:id", precedentHandler.Get)
		api.DELETE("/precedents/:id", precedentHandler.Delete)

		api.GET("/practice-areas", areaHandler.List)
		api.POST("/practice-areas", areaHandler.Create)
		api.GET("/practice-areas/:id", areaHandler.Get)

		api.GET("/lawyers", lawyerHandler.List)
		api.POST("/lawyers", lawyerHandler.Create)
		api.GET("/lawyers/:id", lawyerHandler.Get)
	}

	// Periodic deadline checks on open cases
	interval, err := time.ParseDuration(cfg.DeadlineCheckInterval)
	if err != nil || interval <= 0 {
		interval = 24 * time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			jobs.CheckCaseDeadlines(db.DB, dispatcher)
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
