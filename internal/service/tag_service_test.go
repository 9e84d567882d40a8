package service

import (
	"context"
	"testing"

	"dogpark/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTagged(t *testing.T, env *testEnv) {
	t.Helper()
	owner := env.user(t, "rexowner")
	ctx := context.Background()
	_, err := env.posts.Create(ctx, owner.ID, CreatePostInput{Title: "Corgi sprint", Status: models.PostStatusPublished, Tags: []string{"corgi"}})
	require.NoError(t, err)
	_, err = env.posts.Create(ctx, owner.ID, CreatePostInput{Title: "Husky howl", Status: models.PostStatusPublished, Tags: []string{"husky"}})
	require.NoError(t, err)
	_, err = env.posts.Create(ctx, owner.ID, CreatePostInput{Title: "Corgi draft", Status: models.PostStatusDraft, Tags: []string{"corgi"}})
	require.NoError(t, err)
}

func TestTagService_GetByName(t *testing.T) {
	env := newEnv(t, "")
	seedTagged(t, env)

	tag, err := env.tags.GetByName(context.Background(), TagNameInput{Name: "corgi"})
	require.NoError(t, err)
	assert.Equal(t, 2, tag.UsageCount)

	_, err = env.tags.GetByName(context.Background(), TagNameInput{Name: "poodle"})
	assertCode(t, err, models.CodeNotFound)
}

func TestTagService_SearchIgnoresTagsByDefault(t *testing.T) {
	env := newEnv(t, "")
	seedTagged(t, env)

	page, err := env.tags.Search(context.Background(), 0, SearchTagsInput{Tags: []string{"corgi"}})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestTagService_SearchFiltersWithFlag(t *testing.T) {
	env := newEnv(t, "tag_filter=on")
	seedTagged(t, env)

	page, err := env.tags.Search(context.Background(), 0, SearchTagsInput{Tags: []string{"corgi"}})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Corgi sprint", page.Posts[0].Title)
}

func TestSearchService_Posts(t *testing.T) {
	t.Run("query ignored by default", func(t *testing.T) {
		env := newEnv(t, "")
		seedTagged(t, env)
		page, err := env.search.Posts(context.Background(), 0, SearchPostsInput{Query: "husky"})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
	})

	t.Run("query filters with flag", func(t *testing.T) {
		env := newEnv(t, "search_term_filter=on")
		seedTagged(t, env)
		page, err := env.search.Posts(context.Background(), 0, SearchPostsInput{Query: "HUSKY"})
		require.NoError(t, err)
		require.Equal(t, 1, page.Total)
		assert.Equal(t, "Husky howl", page.Posts[0].Title)
	})
}
