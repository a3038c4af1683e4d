package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"bassinifit/coach-app/internal/api"
	"bassinifit/coach-app/internal/config"
	"bassinifit/coach-app/internal/logger"
	"bassinifit/coach-app/internal/repository"
	"bassinifit/coach-app/internal/repository/cached"
	"bassinifit/coach-app/internal/repository/memory"
	"bassinifit/coach-app/internal/repository/mongo"
	"bassinifit/coach-app/internal/scheduler"
	"bassinifit/coach-app/internal/service"
	"bassinifit/coach-app/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title Coach App API
// @version 1.0
// @description API for a personal trainer's students, workout plans, daily check-ins and progress photos.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatalf("Could not load config: %v", err)
	}
	if err := logger.Setup(cfg.Log); err != nil {
		logger.Fatalf("Could not set up logging: %v", err)
	}
	logger.Infof("Starting coach app server (store: %s)", cfg.Database.Driver)
	if cfg.JWT.Secret == "" {
		logger.Fatalf("jwt.secret (JWT_SECRET) must be set")
	}
	gin.SetMode(cfg.Server.Mode)

	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		logger.Fatalf("Unknown timezone %q: %v", cfg.Server.Timezone, err)
	}
	clock := service.Clock(func() time.Time { return time.Now().In(loc) })

	// --- Store ---
	var store repository.Store
	switch cfg.Database.Driver {
	case "memory":
		logger.L().Warn("Using the in-memory store, data is lost on restart")
		store = memory.NewStore()
	default:
		dbClient, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			logger.Fatalf("Could not connect to MongoDB: %v", err)
		}
		defer func() {
			logger.Infof("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				logger.WithError(err).Error("Failed to disconnect MongoDB")
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)
		logger.Infof("Database connection established.")

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			mongo.EnsureIndexes(ctx, appDB)
			logger.Infof("Index creation process completed.")
		}()
		store = mongo.NewStore(appDB)
	}

	caches := cached.NewCaches(cfg.Cache.TTL)
	store = cached.Wrap(store, caches)

	// --- Photo storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.AccessKeyID != "" && cfg.S3.BucketName != "" {
		initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		fileStorage, err = storage.NewS3Storage(initCtx, cfg.S3)
		cancel()
		if err != nil {
			logger.Fatalf("Failed to initialize S3 storage: %v", err)
		}
	} else {
		logger.L().Warn("S3 credentials not configured, progress photos are disabled")
	}

	// --- Services ---
	authService := service.NewAuthService(store.Users, cfg.JWT.Secret, cfg.JWT.Expiration)
	planService := service.NewPlanService(store, caches, clock)
	progressService := service.NewProgressService(planService, store, caches, clock)
	services := api.Services{
		Auth:      authService,
		Students:  service.NewStudentService(authService, store, fileStorage),
		Catalog:   service.NewCatalogService(store.Exercises, store.MuscleGroups),
		Plans:     planService,
		Progress:  progressService,
		Metabolic: service.NewMetabolicService(store.Profiles),
		Photos:    service.NewPhotoService(store, fileStorage, clock),
	}

	if cfg.Seed.AdminEmail != "" {
		seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		created, err := authService.EnsureAdmin(seedCtx, cfg.Seed.AdminName, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
		cancel()
		if err != nil {
			logger.Fatalf("Could not seed the admin account: %v", err)
		}
		if created {
			logger.Infof("Admin account %s created", cfg.Seed.AdminEmail)
		}
	}

	// --- Background jobs ---
	jobs := scheduler.New(loc)
	if err := jobs.AddWeeklyReset(cfg.Scheduler.WeeklyResetCron, progressService); err != nil {
		logger.Fatalf("%v", err)
	}
	jobs.Start()
	defer jobs.Stop()

	// --- HTTP ---
	router := gin.New()
	router.Use(logger.GinMiddleware(), gin.Recovery())
	api.SetupRoutes(router, services)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	logger.Infof("Server exiting.")
}
