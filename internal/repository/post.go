package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dogpark/internal/models"

	"gorm.io/gorm"
)

// Counter columns on posts.
const (
	LikeCountColumn    = "like_count"
	CommentCountColumn = "comment_count"
)

// PostFilter narrows a published listing. Empty fields match everything.
type PostFilter struct {
	Query  string
	Tags   []string
	Limit  int
	Offset int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListPublished(ctx context.Context, filter PostFilter) ([]models.Post, error)
	ListByUser(ctx context.Context, userID uint, includeDrafts bool, limit, offset int) ([]models.Post, error)
	// IDsByUser returns the id of every post authored by userID, drafts included.
	IDsByUser(ctx context.Context, userID uint) ([]uint, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	Delete(ctx context.Context, id uint) error
	SetCounter(ctx context.Context, id uint, column string, value int) error
	IncrementCounter(ctx context.Context, id uint, column string, delta int) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Status == "" {
		post.Status = models.PostStatusDraft
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := readDB(r.db).WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) ListPublished(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)
	q := readDB(r.db).WithContext(ctx).Model(&models.Post{}).
		Where("status = ?", models.PostStatusPublished)

	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(content) LIKE ?)", like, like)
	}
	if names := distinct(filter.Tags); len(names) > 0 {
		// Posts linked to every requested tag.
		tagged := r.db.Model(&models.PostTag{}).
			Select("post_tags.post_id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name IN ?", names).
			Group("post_tags.post_id").
			Having("COUNT(DISTINCT tags.name) = ?", len(names))
		q = q.Where("id IN (?)", tagged)
	}

	posts := make([]models.Post, 0, limit)
	if err := q.Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, includeDrafts bool, limit, offset int) ([]models.Post, error) {
	limit, offset = clampPage(limit, offset)
	q := readDB(r.db).WithContext(ctx).Where("user_id = ?", userID)
	if !includeDrafts {
		q = q.Where("status = ?", models.PostStatusPublished)
	}
	posts := make([]models.Post, 0, limit)
	if err := q.Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) IDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := readDB(r.db).WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *postRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// Delete removes the post row only. Images, comments, likes and tag links are left in place.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// SetCounter writes an absolute counter value, floored at zero.
func (r *postRepository) SetCounter(ctx context.Context, id uint, column string, value int) error {
	if err := checkCounterColumn(column); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn(column, max(value, 0)).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// IncrementCounter applies delta in a single UPDATE, floored at zero.
func (r *postRepository) IncrementCounter(ctx context.Context, id uint, column string, delta int) error {
	if err := checkCounterColumn(column); err != nil {
		return err
	}
	expr := gorm.Expr(fmt.Sprintf("CASE WHEN %[1]s + ? < 0 THEN 0 ELSE %[1]s + ? END", column), delta, delta)
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn(column, expr).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func checkCounterColumn(column string) error {
	switch column {
	case LikeCountColumn, CommentCountColumn:
		return nil
	}
	return models.NewInternalError(fmt.Errorf("unknown counter column %q", column))
}
