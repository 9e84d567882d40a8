package repository

import (
	"context"

	"dogpark/internal/models"

	"gorm.io/gorm"
)

// ImageRepository stores post image rows.
type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	ListByPost(ctx context.Context, postID uint) ([]models.Image, error)
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *models.Image) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListByPost returns images in display order.
func (r *imageRepository) ListByPost(ctx context.Context, postID uint) ([]models.Image, error) {
	images := []models.Image{}
	if err := readDB(r.db).WithContext(ctx).
		Where("post_id = ?", postID).
		Order("sort_order ASC").Order("id ASC").
		Find(&images).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return images, nil
}
