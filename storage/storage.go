package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"site-safety-inspection/models"

	"github.com/google/uuid"
)

// ImageStore persists uploaded inspection photos and hands back an opaque
// image id used as the storage key everywhere downstream.
type ImageStore struct {
	db *sql.DB
}

// NewImageStore creates an image store over an existing connection.
func NewImageStore(db *sql.DB) *ImageStore {
	return &ImageStore{db: db}
}

// Put stores the image bytes and returns the generated image id. Storing
// uses REPLACE so re-uploading under the same id overwrites cleanly.
func (s *ImageStore) Put(fileName string, data []byte) (string, error) {
	imageID := newImageID()

	query := `REPLACE INTO inspection_images (image_id, file_name, content) VALUES (?, ?, ?)`
	if _, err := s.db.Exec(query, imageID, fileName, data); err != nil {
		return "", models.Backend("image store put", err)
	}
	return imageID, nil
}

// Get returns the stored bytes for an image id.
func (s *ImageStore) Get(imageID string) ([]byte, error) {
	var content []byte
	query := `SELECT content FROM inspection_images WHERE image_id = ?`
	if err := s.db.QueryRow(query, imageID).Scan(&content); err != nil {
		return nil, models.Backend("image store get", err)
	}
	return content, nil
}

// newImageID generates ids of the form IMG_<8 hex chars>.
func newImageID() string {
	id := uuid.New()
	return fmt.Sprintf("IMG_%s", strings.ReplaceAll(id.String(), "-", "")[:8])
}
