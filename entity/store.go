package entity

import (
	"fmt"
	"time"

	"server/models"

	"gorm.io/gorm"
)

// Store is the narrow adapter the rest of the server talks to instead of the
// database directly: put, equality filter, cursor-paged fetch, aggregate
// count. Nothing above it issues its own queries against images.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Put(img *models.Image) error {
	if img.UploadedAt == 0 {
		img.UploadedAt = time.Now().Unix()
	}
	if err := s.db.Create(img).Error; err != nil {
		return fmt.Errorf("put image: %w", err)
	}
	return nil
}

// ExistsHash is the deduplication lookup: any non-deleted image with this
// content hash.
func (s *Store) ExistsHash(hash string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Image{}).
		Where("content_hash = ? AND deleted = 0", hash).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("dedup lookup: %w", err)
	}
	return count > 0, nil
}

func (s *Store) All() ([]models.Image, error) {
	var images []models.Image
	err := s.db.Where("deleted = 0").Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	return images, nil
}

// FetchPage returns up to limit images after the given cursor, newest first,
// along with the cursor for the following page. An empty page returns the
// input cursor unchanged so a caller resuming from it stays put.
func (s *Store) FetchPage(limit int, token string) ([]models.Image, string, error) {
	tx := s.db.Where("deleted = 0")
	if token != "" {
		c, err := decodeCursor(token)
		if err != nil {
			return nil, "", err
		}
		tx = tx.Where("uploaded_at < ? OR (uploaded_at = ? AND id < ?)", c.UploadedAt, c.UploadedAt, c.ID)
	}
	var images []models.Image
	err := tx.Order("uploaded_at DESC, id DESC").Limit(limit).Find(&images).Error
	if err != nil {
		return nil, "", fmt.Errorf("fetch page: %w", err)
	}
	if len(images) == 0 {
		return images, token, nil
	}
	last := images[len(images)-1]
	return images, encodeCursor(cursor{UploadedAt: last.UploadedAt, ID: last.ID}), nil
}

func (s *Store) Count() (int64, error) {
	var count int64
	err := s.db.Model(&models.Image{}).Where("deleted = 0").Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}
	return count, nil
}

func (s *Store) AddIngest(task *models.IngestTask) error {
	if err := s.db.Create(task).Error; err != nil {
		return fmt.Errorf("add ingest task: %w", err)
	}
	return nil
}

// NextPendingIngest returns the oldest pending ingest task, nil when the
// queue is empty.
func (s *Store) NextPendingIngest() (*models.IngestTask, error) {
	var task models.IngestTask
	err := s.db.Where("status = ?", models.IngestPending).Order("id ASC").Limit(1).Find(&task).Error
	if err != nil {
		return nil, fmt.Errorf("fetch pending ingest: %w", err)
	}
	if task.ID == 0 {
		return nil, nil
	}
	return &task, nil
}

func (s *Store) SaveIngest(task *models.IngestTask) error {
	if err := s.db.Save(task).Error; err != nil {
		return fmt.Errorf("save ingest task: %w", err)
	}
	return nil
}
