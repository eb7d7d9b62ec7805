package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"jollybaba-backend/internal/auth"
	"jollybaba-backend/internal/cache"
	"jollybaba-backend/internal/config"
	"jollybaba-backend/internal/database"
	"jollybaba-backend/internal/db"
	"jollybaba-backend/internal/handlers"
	"jollybaba-backend/internal/health"
	h "jollybaba-backend/internal/http"
	"jollybaba-backend/internal/middleware"
	"jollybaba-backend/internal/monitoring"
	"jollybaba-backend/internal/photos"
	"jollybaba-backend/internal/repositories"
	"jollybaba-backend/internal/services"
	"jollybaba-backend/internal/storage"
)

func main() {
	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional; logins fall back to bcrypt-only when absent
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (login will use bcrypt only)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Reconcile the schema and seed the dev admin on every start
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.NewMigrator(pool, cfg).RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtManager := auth.NewJWTManager(cfg)
	googleOAuth := auth.NewGoogleOAuthService(cfg)

	// Repositories
	technicianRepo := repositories.NewTechnicianRepository(pool)
	ticketRepo := repositories.NewTicketRepository(pool)
	inventoryRepo := repositories.NewInventoryRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	khatabookRepo := repositories.NewKhatabookRepository(pool)

	// Photo pipeline and upload storage
	processor := photos.NewProcessor(cfg)
	photoStore, err := photos.NewCloudinaryStore(cfg)
	if err != nil {
		log.Fatalf("Failed to init Cloudinary: %v", err)
	}
	if !photoStore.IsConfigured() {
		log.Println("[Cloudinary] CLOUDINARY_URL not set, repaired-photo uploads disabled")
	}
	localStore, err := storage.NewLocalStore(cfg)
	if err != nil {
		log.Fatalf("Failed to init uploads dir: %v", err)
	}
	mirror, err := storage.NewS3Mirror(ctx, cfg)
	if err != nil {
		log.Printf("[Storage] S3 mirror disabled: %v", err)
	}

	// Services
	technicianService := services.NewTechnicianService(technicianRepo, jwtManager, googleOAuth, cfg)
	ticketService := services.NewTicketService(ticketRepo, processor, photoStore)
	inventoryService := services.NewInventoryService(pool, inventoryRepo, khatabookRepo, customerRepo)
	khatabookService := services.NewKhatabookService(khatabookRepo)
	exportService := services.NewExportService(khatabookService)

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)
	authHandler := handlers.NewAuthHandler(technicianService)
	technicianHandler := handlers.NewTechnicianHandler(technicianService)
	ticketHandler := handlers.NewTicketHandler(ticketService, localStore, mirror, cfg)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService, cfg)
	khatabookHandler := handlers.NewKhatabookHandler(khatabookService, exportService, cfg)
	uploadHandler := handlers.NewUploadHandler(localStore, mirror, cfg)
	healthHandler := handlers.NewHealthHandler(health.NewChecker(pool))
	monitoringHandler := handlers.NewMonitoringHandler(monitoring.NewCollector(pool))

	router := h.NewRouter(
		authHandler,
		technicianHandler,
		ticketHandler,
		inventoryHandler,
		khatabookHandler,
		uploadHandler,
		healthHandler,
		monitoringHandler,
		authMiddleware,
		cfg.Uploads.Dir,
	)

	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server listening on %s (env: %s)", addr, cfg.Server.Env)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
