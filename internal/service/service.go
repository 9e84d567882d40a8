// Package service holds the business rules behind each RPC namespace.
package service

import (
	"context"

	"dogpark/internal/featureflags"
	"dogpark/internal/models"
	"dogpark/internal/repository"
	"dogpark/internal/validation"
)

// Page is the pagination part of list inputs. Zero values fall back to page 1
// and the default page size.
type Page struct {
	Page  int `json:"page" validate:"omitempty,gte=1"`
	Limit int `json:"limit" validate:"omitempty,gte=1,lte=100"`
}

func (p Page) limitOffset() (int, int) {
	page := max(p.Page, 1)
	limit := p.Limit
	if limit <= 0 {
		limit = validation.DefaultPageSize
	}
	limit = min(limit, validation.MaxPageSize)
	return limit, (page - 1) * limit
}

// pageOf wraps a listing. Total is the size of the returned page.
func pageOf(posts []models.Post) *models.PostPage {
	if posts == nil {
		posts = []models.Post{}
	}
	return &models.PostPage{Posts: posts, Total: len(posts)}
}

// adjustPostCounter moves a denormalized post counter by delta, never below
// zero. By default the post is re-read and the new absolute value written;
// the atomic_counters flag switches to a single UPDATE expression. A missing
// post is ignored.
func adjustPostCounter(
	ctx context.Context,
	posts repository.PostRepository,
	flags *featureflags.Manager,
	postID uint,
	column string,
	delta int,
) error {
	if flags.Enabled(featureflags.AtomicCounters, 0) {
		return posts.IncrementCounter(ctx, postID, column, delta)
	}

	post, err := posts.GetByID(ctx, postID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil
		}
		return err
	}
	current := post.LikeCount
	if column == repository.CommentCountColumn {
		current = post.CommentCount
	}
	return posts.SetCounter(ctx, postID, column, max(current+delta, 0))
}
