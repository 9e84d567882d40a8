package service

import (
	"context"
	"strings"

	"dogpark/internal/cache"
	"dogpark/internal/featureflags"
	"dogpark/internal/models"
	"dogpark/internal/repository"
	"dogpark/internal/validation"
)

type TagNameInput struct {
	Name string `json:"name" validate:"required,max=20"`
}

type SearchTagsInput struct {
	Tags []string `json:"tags" validate:"dive,max=20"`
	Page
}

type SearchPostsInput struct {
	Query string `json:"query" validate:"max=200"`
	Page
}

type TagService struct {
	tags  repository.TagRepository
	posts repository.PostRepository
	cache *cache.Cache
	flags *featureflags.Manager
}

func NewTagService(tags repository.TagRepository, posts repository.PostRepository, c *cache.Cache, flags *featureflags.Manager) *TagService {
	return &TagService{tags: tags, posts: posts, cache: c, flags: flags}
}

// List returns every tag, most used first.
func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.cache.Aside(ctx, "tag_list", cache.TagListKey, &tags, cache.TagListTTL, func() error {
		var err error
		tags, err = s.tags.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

func (s *TagService) GetByName(ctx context.Context, in TagNameInput) (*models.Tag, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	tag, err := s.tags.GetByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, models.NewNotFoundError("Tag", in.Name)
	}
	return tag, nil
}

// Search lists published posts. The requested tags only narrow the result
// when the tag_filter flag is on.
func (s *TagService) Search(ctx context.Context, viewerID uint, in SearchTagsInput) (*models.PostPage, error) {
	in.Tags = normalizeTags(in.Tags)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	limit, offset := in.limitOffset()
	filter := repository.PostFilter{Limit: limit, Offset: offset}
	if s.flags.Enabled(featureflags.TagFilter, viewerID) {
		filter.Tags = in.Tags
	}
	posts, err := s.posts.ListPublished(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pageOf(posts), nil
}

type SearchService struct {
	posts repository.PostRepository
	flags *featureflags.Manager
}

func NewSearchService(posts repository.PostRepository, flags *featureflags.Manager) *SearchService {
	return &SearchService{posts: posts, flags: flags}
}

// Posts lists published posts. The query only filters titles and content when
// the search_term_filter flag is on.
func (s *SearchService) Posts(ctx context.Context, viewerID uint, in SearchPostsInput) (*models.PostPage, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	limit, offset := in.limitOffset()
	filter := repository.PostFilter{Limit: limit, Offset: offset}
	if s.flags.Enabled(featureflags.SearchTermFilter, viewerID) {
		filter.Query = in.Query
	}
	posts, err := s.posts.ListPublished(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pageOf(posts), nil
}
