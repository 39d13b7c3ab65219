// Package filestore persists uploaded photos to local disk and hands back a
// retrievable URL. Type and size checks happen here so every caller gets the
// same policy.
package filestore

import (
	"fmt"
	"os"
	"path/filepath"

	"campusfix/backend/internal/apperr"
	"campusfix/backend/internal/config"

	"github.com/google/uuid"
)

// Store writes validated uploads under a base directory and serves them
// under a base URL path.
type Store struct {
	BaseDir string
	BaseURL string
}

func NewStore(baseDir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create base dir: %w", err)
	}
	return &Store{BaseDir: baseDir, BaseURL: baseURL}, nil
}

// Save validates the declared MIME type against the allow-list and the
// payload against the size cap, persists the bytes, and returns the URL.
func (s *Store) Save(data []byte, mimeType string) (string, error) {
	ext, ok := config.UploadMIMETypes[mimeType]
	if !ok {
		return "", apperr.Validation("Unsupported file type: %s (allowed: JPEG, PNG, GIF)", mimeType)
	}
	if len(data) == 0 {
		return "", apperr.Validation("Uploaded file is empty")
	}
	if len(data) > config.MaxUploadBytes {
		return "", apperr.Validation("Uploaded file exceeds the 5MB limit")
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.BaseDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperr.Upstream("Failed to store uploaded file")
	}

	return s.BaseURL + "/" + name, nil
}
