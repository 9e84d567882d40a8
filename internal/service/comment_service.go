package service

import (
	"context"

	"dogpark/internal/cache"
	"dogpark/internal/featureflags"
	"dogpark/internal/models"
	"dogpark/internal/observability"
	"dogpark/internal/render"
	"dogpark/internal/repository"
	"dogpark/internal/validation"
)

type ListCommentsInput struct {
	PostID uint `json:"postId" validate:"required"`
}

type CreateCommentInput struct {
	PostID  uint   `json:"postId" validate:"required"`
	Content string `json:"content" validate:"required,max=500"`
}

type DeleteCommentInput struct {
	ID uint `json:"id" validate:"required"`
}

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	users    repository.UserRepository
	cache    *cache.Cache
	flags    *featureflags.Manager
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
	c *cache.Cache,
	flags *featureflags.Manager,
) *CommentService {
	return &CommentService{comments: comments, posts: posts, users: users, cache: c, flags: flags}
}

// List returns a post's comments, oldest first, with author cards.
func (s *CommentService) List(ctx context.Context, in ListCommentsInput) ([]models.CommentView, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	authors, err := s.users.GetSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]models.CommentView, len(comments))
	for i, c := range comments {
		views[i] = models.CommentView{Comment: c, Author: authors[c.UserID]}
	}
	return views, nil
}

// Create stores the comment and bumps the post's comment count.
func (s *CommentService) Create(ctx context.Context, userID uint, in CreateCommentInput) (uint, error) {
	if err := validation.Struct(in); err != nil {
		return 0, err
	}
	content := render.PlainText(in.Content)
	if content == "" {
		return 0, models.NewValidationError("content is required")
	}
	if _, err := s.posts.GetByID(ctx, in.PostID); err != nil {
		return 0, err
	}

	comment := &models.Comment{PostID: in.PostID, UserID: userID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return 0, err
	}
	observability.CommentsWritten.WithLabelValues("create").Inc()

	if err := adjustPostCounter(ctx, s.posts, s.flags, in.PostID, repository.CommentCountColumn, 1); err != nil {
		return 0, err
	}
	s.cache.InvalidatePost(ctx, in.PostID)
	return comment.ID, nil
}

// Delete removes the caller's own comment. A missing comment and someone
// else's comment are reported the same way.
func (s *CommentService) Delete(ctx context.Context, userID uint, in DeleteCommentInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	comment, err := s.comments.GetByID(ctx, in.ID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return models.NewForbiddenError("Unauthorized")
		}
		return err
	}
	if comment.UserID != userID {
		return models.NewForbiddenError("Unauthorized")
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return err
	}
	observability.CommentsWritten.WithLabelValues("delete").Inc()

	if err := adjustPostCounter(ctx, s.posts, s.flags, comment.PostID, repository.CommentCountColumn, -1); err != nil {
		return err
	}
	s.cache.InvalidatePost(ctx, comment.PostID)
	return nil
}
