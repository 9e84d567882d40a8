package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"dogpark/internal/cache"
	"dogpark/internal/featureflags"
	"dogpark/internal/imaging"
	"dogpark/internal/middleware"
	"dogpark/internal/models"
	"dogpark/internal/observability"
	"dogpark/internal/render"
	"dogpark/internal/repository"
	"dogpark/internal/storage"
	"dogpark/internal/validation"
)

type ListPostsInput struct {
	Page
}

type ListByUserInput struct {
	UserID uint `json:"userId" validate:"required"`
	Page
}

type PostIDInput struct {
	ID uint `json:"id" validate:"required"`
}

// ImageUpload is a base64 encoded picture attached to a new post.
type ImageUpload struct {
	Data     string `json:"data" validate:"required"`
	Filename string `json:"filename" validate:"required,max=255,excludesall=/\\"`
}

type CreatePostInput struct {
	Title   string            `json:"title" validate:"required,max=100"`
	Content string            `json:"content" validate:"max=10000"`
	Status  models.PostStatus `json:"status" validate:"omitempty,oneof=draft published"`
	Images  []ImageUpload     `json:"images" validate:"max=5,dive"`
	Tags    []string          `json:"tags" validate:"max=5,dive,max=20"`
}

type UpdatePostInput struct {
	ID      uint               `json:"id" validate:"required"`
	Title   *string            `json:"title" validate:"omitempty,max=100"`
	Content *string            `json:"content" validate:"omitempty,max=10000"`
	Status  *models.PostStatus `json:"status" validate:"omitempty,oneof=draft published"`
}

type PostService struct {
	posts          repository.PostRepository
	images         repository.ImageRepository
	comments       repository.CommentRepository
	tags           repository.TagRepository
	users          repository.UserRepository
	store          storage.Store
	cache          *cache.Cache
	flags          *featureflags.Manager
	maxUploadBytes int64
}

// PostServiceDeps groups the collaborators of PostService.
type PostServiceDeps struct {
	Posts          repository.PostRepository
	Images         repository.ImageRepository
	Comments       repository.CommentRepository
	Tags           repository.TagRepository
	Users          repository.UserRepository
	Store          storage.Store
	Cache          *cache.Cache
	Flags          *featureflags.Manager
	MaxUploadBytes int64
}

func NewPostService(d PostServiceDeps) *PostService {
	return &PostService{
		posts:          d.Posts,
		images:         d.Images,
		comments:       d.Comments,
		tags:           d.Tags,
		users:          d.Users,
		store:          d.Store,
		cache:          d.Cache,
		flags:          d.Flags,
		maxUploadBytes: d.MaxUploadBytes,
	}
}

// List returns published posts, newest first.
func (s *PostService) List(ctx context.Context, in ListPostsInput) (*models.PostPage, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	limit, offset := in.limitOffset()
	posts, err := s.posts.ListPublished(ctx, repository.PostFilter{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return pageOf(posts), nil
}

// ListByUser returns a user's posts. Drafts are included only for their author.
func (s *PostService) ListByUser(ctx context.Context, viewerID uint, in ListByUserInput) (*models.PostPage, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	limit, offset := in.limitOffset()
	posts, err := s.posts.ListByUser(ctx, in.UserID, viewerID == in.UserID, limit, offset)
	if err != nil {
		return nil, err
	}
	return pageOf(posts), nil
}

// GetByID assembles the post detail view. Results are cached until the post
// or anything attached to it changes.
func (s *PostService) GetByID(ctx context.Context, in PostIDInput) (*models.PostDetail, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var detail models.PostDetail
	err := s.cache.Aside(ctx, "post_detail", cache.PostDetailKey(in.ID), &detail, cache.PostDetailTTL, func() error {
		d, err := s.loadDetail(ctx, in.ID)
		if err != nil {
			return err
		}
		detail = *d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *PostService) loadDetail(ctx context.Context, id uint) (*models.PostDetail, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	images, err := s.images.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	tags, err := s.tags.ListForPost(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := []uint{post.UserID}
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
	return &models.PostDetail{
		Post:        *post,
		ContentHTML: render.Markdown(post.Content),
		Author:      authors[post.UserID],
		Images:      images,
		Comments:    views,
		Tags:        tags,
	}, nil
}

// normalizeTags trims, drops empties and deduplicates while keeping order.
func normalizeTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// PostImageKey is the blob key of an image attached to a post.
func PostImageKey(postID uint, filename string) string {
	return fmt.Sprintf("posts/%d/%s", postID, filename)
}

// Create inserts the post, then uploads its images in order and links its
// tags. The steps are not transactional: a failed upload leaves the post and
// any earlier images in place.
func (s *PostService) Create(ctx context.Context, userID uint, in CreatePostInput) (uint, error) {
	in.Tags = normalizeTags(in.Tags)
	if err := validation.Struct(in); err != nil {
		return 0, err
	}
	if in.Status == "" {
		in.Status = models.PostStatusDraft
	}

	uploads := make([]*imaging.Result, len(in.Images))
	for i, img := range in.Images {
		res, err := imaging.FromBase64(img.Data, s.maxUploadBytes)
		if err != nil {
			return 0, models.NewValidationError(fmt.Sprintf("images[%d]: %v", i, err))
		}
		uploads[i] = res
	}

	post := &models.Post{
		UserID:  userID,
		Title:   render.PlainText(in.Title),
		Content: in.Content,
		Status:  in.Status,
	}
	if utf8.RuneCountInString(post.Title) == 0 {
		return 0, models.NewValidationError("title is required")
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return 0, err
	}
	observability.PostsCreated.WithLabelValues(string(post.Status)).Inc()

	for i, img := range in.Images {
		obj, err := s.store.Put(ctx, PostImageKey(post.ID, img.Filename), uploads[i].Data, imaging.ContentType)
		if err != nil {
			observability.ImageUploads.WithLabelValues("post", "error").Inc()
			middleware.Logger.ErrorContext(ctx, "post image upload failed",
				slog.Uint64("post_id", uint64(post.ID)),
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			return 0, models.NewInternalErrorMessage("Failed to upload image", err)
		}
		observability.ImageUploads.WithLabelValues("post", "success").Inc()
		if err := s.images.Create(ctx, &models.Image{
			PostID:    post.ID,
			URL:       obj.URL,
			FileKey:   obj.Key,
			SortOrder: i,
		}); err != nil {
			return 0, err
		}
	}

	if err := s.attachTags(ctx, post.ID, in.Tags); err != nil {
		return 0, err
	}
	return post.ID, nil
}

func (s *PostService) attachTags(ctx context.Context, postID uint, names []string) error {
	if len(names) == 0 {
		return nil
	}
	for _, name := range names {
		tag, err := s.tags.GetOrCreate(ctx, name)
		if err != nil {
			return err
		}
		if s.flags.Enabled(featureflags.AtomicCounters, 0) {
			err = s.tags.IncrementUsage(ctx, tag.ID, 1)
		} else {
			err = s.tags.SetUsageCount(ctx, tag.ID, tag.UsageCount+1)
		}
		if err != nil {
			return err
		}
		if _, err := s.tags.Link(ctx, postID, tag.ID); err != nil {
			return err
		}
	}
	s.cache.InvalidateTags(ctx)
	return nil
}

// authorize loads the post and checks the caller wrote it.
func (s *PostService) authorize(ctx context.Context, userID, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, models.NewForbiddenError("Unauthorized")
	}
	return post, nil
}

// Update applies the supplied fields. Only the author may update a post.
func (s *PostService) Update(ctx context.Context, userID uint, in UpdatePostInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if _, err := s.authorize(ctx, userID, in.ID); err != nil {
		return err
	}

	updates := map[string]any{}
	if in.Title != nil {
		title := render.PlainText(*in.Title)
		if title == "" {
			return models.NewValidationError("title is required")
		}
		updates["title"] = title
	}
	if in.Content != nil {
		updates["content"] = *in.Content
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if err := s.posts.Update(ctx, in.ID, updates); err != nil {
		return err
	}
	s.cache.InvalidatePost(ctx, in.ID)
	return nil
}

// Delete removes the post row. Only the author may delete a post.
func (s *PostService) Delete(ctx context.Context, userID uint, in PostIDInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if _, err := s.authorize(ctx, userID, in.ID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, in.ID); err != nil {
		return err
	}
	s.cache.InvalidatePost(ctx, in.ID)
	return nil
}
