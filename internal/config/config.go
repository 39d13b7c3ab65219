package config

import (
	"os"
	"time"
)

const (
	// Notifications
	NotificationRetention = 14 * 24 * time.Hour
	NotificationSweepTick = 1 * time.Hour
	// PreviewLength bounds the description/comment preview embedded in a
	// notification message.
	PreviewLength = 50

	// Report short codes
	ReportCodeMin      = 1000
	ReportCodeMax      = 9999
	ReportCodeAttempts = 10
	// ReportCodeReserveTTL bounds a Redis code reservation. It only needs to
	// cover the window between reserving a code and the report row
	// committing; after that the DB uniqueness check is authoritative, and
	// an expired key lets deleted or never-committed codes be reused.
	ReportCodeReserveTTL = time.Minute

	// Uploads
	MaxUploadBytes = 5 << 20
)

// UploadMIMETypes is the allow-list for uploaded photos.
var UploadMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Getenv returns the env value or the fallback when unset.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
