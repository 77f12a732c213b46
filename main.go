package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"site-safety-inspection/ai"
	"site-safety-inspection/config"
	"site-safety-inspection/database"
	"site-safety-inspection/email"
	"site-safety-inspection/gemini"
	"site-safety-inspection/handlers"
	"site-safety-inspection/metrics"
	"site-safety-inspection/openai"
	"site-safety-inspection/rabbitmq"
	"site-safety-inspection/service"
	"site-safety-inspection/stubai"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	// Select the AI backend
	var client ai.Client
	switch cfg.AIProvider {
	case "stub":
		client = stubai.NewClient()
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Fatal("GEMINI_API_KEY environment variable is required")
		}
		client = gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		if cfg.OpenAIAPIKey == "" {
			log.Fatal("OPENAI_API_KEY environment variable is required")
		}
		client = openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	// Initialize database
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	// Initialize RabbitMQ publisher; runs continue without it
	var publisher service.EventPublisher
	if p, err := rabbitmq.NewPublisher(cfg.GetRabbitMQURL(), cfg.RabbitMQExchange, cfg.RabbitMQRoutingKey); err != nil {
		log.Warnf("Failed to initialize RabbitMQ publisher: %v", err)
	} else {
		publisher = p
	}

	sender := email.NewSender(cfg)

	// Initialize service
	inspectionService := service.NewService(cfg, db, client, sender, publisher)

	// Initialize handlers
	h := handlers.NewHandlers(inspectionService)

	metrics.Register()

	// Setup HTTP server
	router := gin.Default()

	// API routes
	api := router.Group("/api/v3")
	{
		api.GET("/health", h.HealthCheck)
		api.POST("/analyze", h.Analyze)
		api.GET("/results", h.Results)
		api.GET("/report", h.Report)
		api.GET("/checklist", h.Checklist)
		api.POST("/email", h.Email)
		api.GET("/history/:site_id", h.History)
		api.POST("/reset", h.Reset)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Infof("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Stop the inspection service
	inspectionService.Stop()

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
