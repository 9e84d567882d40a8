package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dogpark/internal/cache"
	"dogpark/internal/imaging"
	"dogpark/internal/middleware"
	"dogpark/internal/models"
	"dogpark/internal/observability"
	"dogpark/internal/render"
	"dogpark/internal/repository"
	"dogpark/internal/storage"
	"dogpark/internal/validation"
)

type GetProfileInput struct {
	UserID uint `json:"userId" validate:"required"`
}

// UpdateProfileInput carries optional fields; nil leaves a field unchanged.
type UpdateProfileInput struct {
	Username     *string `json:"username" validate:"omitempty,username"`
	Bio          *string `json:"bio" validate:"omitempty,max=500"`
	ProfileImage *string `json:"profileImage" validate:"omitempty"`
}

type UserService struct {
	users          repository.UserRepository
	posts          repository.PostRepository
	store          storage.Store
	cache          *cache.Cache
	maxUploadBytes int64
	now            func() time.Time
}

func NewUserService(users repository.UserRepository, posts repository.PostRepository, store storage.Store, c *cache.Cache, maxUploadBytes int64) *UserService {
	return &UserService{
		users:          users,
		posts:          posts,
		store:          store,
		cache:          c,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

func (s *UserService) GetProfile(ctx context.Context, in GetProfileInput) (*models.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, in.UserID)
}

// ProfileImageKey is the blob key of a profile picture uploaded at t.
func ProfileImageKey(userID uint, t time.Time) string {
	return fmt.Sprintf("profile-images/%d-%d.jpg", userID, t.UnixMilli())
}

// UpdateProfile applies the supplied fields to the caller's own row.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		in.Username = &trimmed
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var upload *imaging.Result
	if in.ProfileImage != nil && *in.ProfileImage != "" {
		res, err := imaging.FromBase64(*in.ProfileImage, s.maxUploadBytes)
		if err != nil {
			return nil, models.NewValidationError(fmt.Sprintf("profileImage: %v", err))
		}
		upload = res
	}

	updates := map[string]any{}
	if in.Username != nil {
		existing, err := s.users.GetByUsername(ctx, *in.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != userID {
			return nil, models.NewConflictError("Username already taken")
		}
		updates["username"] = *in.Username
	}
	if in.Bio != nil {
		updates["bio"] = render.PlainText(*in.Bio)
	}

	if upload != nil {
		obj, err := s.store.Put(ctx, ProfileImageKey(userID, s.now()), upload.Data, imaging.ContentType)
		if err != nil {
			observability.ImageUploads.WithLabelValues("profile", "error").Inc()
			middleware.Logger.ErrorContext(ctx, "profile image upload failed",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()),
			)
			return nil, models.NewInternalErrorMessage("Failed to upload profile image", err)
		}
		observability.ImageUploads.WithLabelValues("profile", "success").Inc()
		updates["profile_image"] = obj.URL
	}

	if err := s.users.UpdateProfile(ctx, userID, updates); err != nil {
		return nil, err
	}
	_, renamed := updates["username"]
	_, newImage := updates["profile_image"]
	if renamed || newImage {
		s.invalidateAuthorCards(ctx, userID)
	}
	return s.users.GetByID(ctx, userID)
}

// invalidateAuthorCards drops cached post details that embed the user's card.
func (s *UserService) invalidateAuthorCards(ctx context.Context, userID uint) {
	if s.cache == nil || s.posts == nil {
		return
	}
	ids, err := s.posts.IDsByUser(ctx, userID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "author card invalidation failed",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()),
		)
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cache.PostDetailKey(id)
	}
	s.cache.Invalidate(ctx, keys...)
}
