package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"campusfix/backend/internal/models"
	"campusfix/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for the ops CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "promote":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin promote <email>")
			os.Exit(1)
		}
		email := os.Args[2]
		if err := storageSvc.UpdateUserRole(email, models.RoleAdmin); err != nil {
			log.Fatalf("Error promoting user: %v", err)
		}
		fmt.Printf("User %s is now an admin.\n", email)
	case "demote":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin demote <email>")
			os.Exit(1)
		}
		email := os.Args[2]
		if err := storageSvc.UpdateUserRole(email, models.RoleStudent); err != nil {
			log.Fatalf("Error demoting user: %v", err)
		}
		fmt.Printf("User %s is now a student.\n", email)
	case "purge-notifications":
		purged, err := storageSvc.PurgeExpiredNotifications(time.Now())
		if err != nil {
			log.Fatalf("Error purging notifications: %v", err)
		}
		fmt.Printf("Purged %d expired notifications.\n", purged)
	case "overdue-tasks":
		tasks, err := storageSvc.ListOverdueTasks(time.Now())
		if err != nil {
			log.Fatalf("Error listing overdue tasks: %v", err)
		}
		for _, t := range tasks {
			fmt.Printf("%s  report=%s  assignee=%s  due=%s  status=%s\n",
				t.ID, t.ReportID, t.AssignedToID, t.DueDate.Format(time.RFC3339), t.Status)
		}
		fmt.Printf("%d overdue tasks.\n", len(tasks))
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}
