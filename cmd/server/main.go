package main

import (
	"compsage/server/config"
	"compsage/server/internal/api"
	"compsage/server/internal/database"
	"compsage/server/internal/geocoding"
	"compsage/server/internal/processor"
	"compsage/server/internal/queue"
	"compsage/server/internal/scheduler"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Load configuration from the environment
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Load the market registry and any custom adjustment rates
	if err := config.LoadMarketConfig(); err != nil {
		logger.WithError(err).Fatal("Failed to load market configuration")
	}
	if err := config.LoadRateSchedule(cfg.Engine.RatesPath); err != nil {
		logger.WithError(err).Fatal("Failed to load adjustment rates")
	}

	// Construct database path relative to the server directory
	dbPath := cfg.Database.Path
	if !filepath.IsAbs(dbPath) {
		currentDir, err := os.Getwd()
		if err != nil {
			logger.WithError(err).Fatal("Failed to get current directory")
		}
		dbPath = filepath.Join(currentDir, dbPath)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}
	logger.Infof("Using database at: %s", dbPath)

	// Initialize database
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Open a second handle for the ingest pipeline's batch writes
	gormDB, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open ingest database handle")
	}

	// Initialize the ingest queue and its processor
	ingest := queue.NewIngestQueue(cfg.Ingest.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(gormDB, ingest, cfg, logger)
	batchProcessor.Start()

	// Initialize geocoder
	cacheDir := cfg.Geocoding.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "compsage", "geocode_cache")
	}
	geocoder := geocoding.NewGeocoder(logger, cacheDir)

	// Start the maintenance scheduler for session retention and
	// coordinate backfill
	maint := scheduler.NewScheduler(db, geocoder, cfg, logger)
	if err := maint.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start scheduler")
	}

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())

	// Apply CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))

	// Define routes
	api.SetupRoutes(router, db, ingest, geocoder, cfg, logger)
	api.SetupMarketRoutes(router, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Infof("Starting server on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	// Wait for an interrupt, then drain everything before exiting
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Failed to shut down server cleanly")
	}

	maint.Stop()
	batchProcessor.Stop()
	logger.Info("Shutdown complete")
}
