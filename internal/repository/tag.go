package repository

import (
	"context"
	"errors"
	"fmt"

	"dogpark/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository stores tags and their links to posts.
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	// GetOrCreate returns the tag named name, inserting it with a zero usage count if absent.
	GetOrCreate(ctx context.Context, name string) (*models.Tag, error)
	SetUsageCount(ctx context.Context, id uint, value int) error
	IncrementUsage(ctx context.Context, id uint, delta int) error
	// Link reports false when the post already carried the tag.
	Link(ctx context.Context, postID, tagID uint) (bool, error)
	ListForPost(ctx context.Context, postID uint) ([]models.PostTagView, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// List returns all tags, most used first.
func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := readDB(r.db).WithContext(ctx).
		Order("usage_count DESC").Order("name ASC").
		Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

// GetByName returns nil, nil for an unknown tag.
func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

func (r *tagRepository) GetOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	tag, err := r.GetByName(ctx, name)
	if err != nil || tag != nil {
		return tag, err
	}
	tag = &models.Tag{Name: name}
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		if !isUniqueConstraintError(err) {
			return nil, models.NewInternalError(err)
		}
		// Lost a race with a concurrent insert.
		existing, err := r.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, models.NewInternalError(fmt.Errorf("tag %q vanished after conflict", name))
		}
		return existing, nil
	}
	return tag, nil
}

func (r *tagRepository) SetUsageCount(ctx context.Context, id uint, value int) error {
	if err := r.db.WithContext(ctx).Model(&models.Tag{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", max(value, 0)).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tagRepository) IncrementUsage(ctx context.Context, id uint, delta int) error {
	if err := r.db.WithContext(ctx).Model(&models.Tag{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", delta)).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tagRepository) Link(ctx context.Context, postID, tagID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PostTag{PostID: postID, TagID: tagID})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListForPost returns the post's tag links with names, in link order.
func (r *tagRepository) ListForPost(ctx context.Context, postID uint) ([]models.PostTagView, error) {
	views := []models.PostTagView{}
	if err := readDB(r.db).WithContext(ctx).
		Table("post_tags").
		Select("post_tags.id, post_tags.post_id, post_tags.tag_id, tags.name").
		Joins("JOIN tags ON tags.id = post_tags.tag_id").
		Where("post_tags.post_id = ?", postID).
		Order("post_tags.id ASC").
		Scan(&views).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}
