package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"campusfix/backend/internal/alerts"
	"campusfix/backend/internal/api/handler"
	"campusfix/backend/internal/auth"
	"campusfix/backend/internal/config"
	"campusfix/backend/internal/filestore"
	"campusfix/backend/internal/models"
	"campusfix/backend/internal/notification"
	"campusfix/backend/internal/presence"
	"campusfix/backend/internal/relay"
	"campusfix/backend/internal/report"
	"campusfix/backend/internal/storage"
	"campusfix/backend/internal/task"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies() (*gorm.DB, *redis.Client) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		config.Getenv("DB_HOST", "localhost"),
		config.Getenv("DB_USER", "user"),
		config.Getenv("DB_PASSWORD", "password"),
		config.Getenv("DB_NAME", "campusfixdb"),
		config.Getenv("DB_PORT", "5432"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Getenv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Report{},
		&models.ReportComment{},
		&models.AdminTask{},
		&models.TaskNote{},
		&models.Notification{},
		&models.Message{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting CampusFix Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)

	authSvc := auth.NewService(config.Getenv("JWT_SECRET", "dev-only-secret"))

	files, err := filestore.NewStore(config.Getenv("UPLOAD_DIR", "uploads"), "/uploads")
	if err != nil {
		log.Fatalf("Failed to initialize file store: %v", err)
	}

	registry := presence.NewRegistry()
	hub := relay.NewRelayService(s, registry)

	notificationSvc := notification.NewService(s)
	reportSvc := report.NewService(s, notificationSvc)
	reportSvc.Pusher = hub
	taskSvc := task.NewService(s, reportSvc)

	// Telegram admin alerts are optional; a missing token disables them.
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		chatID, err := strconv.ParseInt(os.Getenv("ADMIN_TELEGRAM_CHAT_ID"), 10, 64)
		if err != nil {
			log.Println("Warning: ADMIN_TELEGRAM_CHAT_ID missing or invalid, alerts disabled")
		} else if alerter, err := alerts.NewTelegramAlerter(token, chatID); err != nil {
			log.Printf("Warning: Telegram alerts disabled: %v", err)
		} else {
			reportSvc.Alerter = alerter
		}
	}

	go hub.Run()
	go notificationSvc.RunSweeper(make(chan struct{}))

	r := gin.Default()
	r.Static("/uploads", files.BaseDir)

	h := handler.NewHandler(hub, authSvc, s, reportSvc, taskSvc, notificationSvc, files, registry)
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           ":" + config.Getenv("PORT", "8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
