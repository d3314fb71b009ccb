package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/subwatch/subwatch/internal/config"
	"github.com/subwatch/subwatch/internal/handler"
	"github.com/subwatch/subwatch/internal/middleware"
	"github.com/subwatch/subwatch/internal/repository"
	"github.com/subwatch/subwatch/internal/service"
	"github.com/subwatch/subwatch/internal/utils/email"
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

	// Initialize layers
	repo := repository.NewRepository(db)
	mailer := email.NewSender(cfg, logger)
	svc := service.NewService(repo, logger, cfg, mailer)
	h := handler.NewHandler(svc)

	// Daily sweep for upcoming-charge reminders
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.ReminderSchedule, func() {
		if _, err := svc.SendUpcomingChargeReminders(); err != nil {
			logger.Errorf("Reminder sweep failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule reminder sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/api/health", h.Health).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/api").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/upload/analyze", h.AnalyzeUpload).Methods("POST")
	authRouter.HandleFunc("/subscriptions", h.ListSubscriptions).Methods("GET")
	authRouter.HandleFunc("/subscriptions/upcoming", h.UpcomingSubscriptions).Methods("GET")
	authRouter.HandleFunc("/subscriptions/export", h.ExportSubscriptions).Methods("GET")
	authRouter.HandleFunc("/subscriptions/{id}/false-positive", h.MarkFalsePositive).Methods("PATCH")
	authRouter.HandleFunc("/subscriptions/{id}", h.DeleteSubscription).Methods("DELETE")
	authRouter.HandleFunc("/cards", h.ListCards).Methods("GET")
	authRouter.HandleFunc("/cards", h.CreateCard).Methods("POST")
	authRouter.HandleFunc("/cards/{id}", h.DeleteCard).Methods("DELETE")

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
