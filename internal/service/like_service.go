package service

import (
	"context"

	"dogpark/internal/cache"
	"dogpark/internal/featureflags"
	"dogpark/internal/models"
	"dogpark/internal/observability"
	"dogpark/internal/repository"
	"dogpark/internal/validation"
)

type LikeInput struct {
	PostID uint `json:"postId" validate:"required"`
}

type LikeService struct {
	likes repository.LikeRepository
	posts repository.PostRepository
	cache *cache.Cache
	flags *featureflags.Manager
}

func NewLikeService(likes repository.LikeRepository, posts repository.PostRepository, c *cache.Cache, flags *featureflags.Manager) *LikeService {
	return &LikeService{likes: likes, posts: posts, cache: c, flags: flags}
}

// Toggle flips the caller's like on a post and returns the new state.
func (s *LikeService) Toggle(ctx context.Context, userID uint, in LikeInput) (bool, error) {
	if err := validation.Struct(in); err != nil {
		return false, err
	}
	if _, err := s.posts.GetByID(ctx, in.PostID); err != nil {
		return false, err
	}

	existing, err := s.likes.Find(ctx, in.PostID, userID)
	if err != nil {
		return false, err
	}

	liked := existing == nil
	delta := 0
	if existing != nil {
		if err := s.likes.Delete(ctx, existing.ID); err != nil {
			return false, err
		}
		delta = -1
	} else {
		created, err := s.likes.Insert(ctx, &models.Like{PostID: in.PostID, UserID: userID})
		if err != nil {
			return false, err
		}
		// A concurrent toggle already inserted the pair and counted it.
		if created {
			delta = 1
		}
	}

	if delta != 0 {
		if err := adjustPostCounter(ctx, s.posts, s.flags, in.PostID, repository.LikeCountColumn, delta); err != nil {
			return false, err
		}
		s.cache.InvalidatePost(ctx, in.PostID)
	}

	state := "unliked"
	if liked {
		state = "liked"
	}
	observability.LikeToggles.WithLabelValues(state).Inc()
	return liked, nil
}

func (s *LikeService) IsLiked(ctx context.Context, userID uint, in LikeInput) (bool, error) {
	if err := validation.Struct(in); err != nil {
		return false, err
	}
	like, err := s.likes.Find(ctx, in.PostID, userID)
	if err != nil {
		return false, err
	}
	return like != nil, nil
}
