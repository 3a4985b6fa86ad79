package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sachinssagar/Blog-post-backend/internal/cleanup"
	"github.com/sachinssagar/Blog-post-backend/internal/config"
	"github.com/sachinssagar/Blog-post-backend/internal/feed"
	"github.com/sachinssagar/Blog-post-backend/internal/handler"
	"github.com/sachinssagar/Blog-post-backend/internal/repository"
	"github.com/sachinssagar/Blog-post-backend/internal/service"
	"github.com/sachinssagar/Blog-post-backend/internal/storage"
	"github.com/sachinssagar/Blog-post-backend/internal/utils/email"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		logger.Fatalf("Failed to migrate schema: %v", err)
	}

	// Initialize layers
	posts := repository.NewPostRepository(db)
	users := repository.NewUserRepository(db)
	mail := email.NewSender(cfg, logger)
	svc := service.NewService(posts, users, mail, logger, cfg)
	store, err := storage.NewStore(cfg.UploadDir, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize image store: %v", err)
	}
	h := handler.NewHandler(svc, store, feed.NewBuilder(cfg.BaseURL))

	// Setup router
	r := handler.NewRouter(h, cfg)

	// Nightly sweep of uploaded images no post references anymore
	sweeper := cleanup.NewSweeper(posts, store, logger)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 3 * * *", func() {
		if err := sweeper.Sweep(context.Background()); err != nil {
			logger.Errorf("Image sweep failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule image sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
