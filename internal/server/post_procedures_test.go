package server

import (
	"net/http"
	"strings"
	"testing"

	"dogpark/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPost(t *testing.T, ts *testServer, cookie *http.Cookie, input map[string]any) uint {
	t.Helper()
	resp := rpc(t, ts.app, http.MethodPost, "posts.create", input, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out createPostResponse
	decode(t, resp, &out)
	require.True(t, out.Success)
	return out.PostID
}

func TestPostLifecycle(t *testing.T) {
	ts := newTestServer(t)
	authorID, author := ts.signUp(t, "rex")
	_, other := ts.signUp(t, "fido")

	postID := createPost(t, ts, author, map[string]any{
		"title":   "Park day",
		"content": "We went to the **park**.",
		"status":  "published",
		"images": []map[string]string{
			{"data": pngBase64(t), "filename": "one.png"},
			{"data": pngBase64(t), "filename": "two.png"},
		},
		"tags": []string{" beagle ", "park", "beagle"},
	})

	resp := rpc(t, ts.app, http.MethodGet, "posts.getById", map[string]uint{"id": postID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail models.PostDetail
	decode(t, resp, &detail)
	assert.Equal(t, "Park day", detail.Title)
	assert.Equal(t, authorID, detail.UserID)
	assert.Contains(t, detail.ContentHTML, "<strong>park</strong>")
	require.Len(t, detail.Images, 2)
	assert.Equal(t, 0, detail.Images[0].SortOrder)
	assert.Equal(t, 1, detail.Images[1].SortOrder)
	assert.Equal(t, "/media/posts/1/one.png", detail.Images[0].URL)
	require.Len(t, detail.Tags, 2)
	assert.Equal(t, "beagle", detail.Tags[0].Name)
	require.NotNil(t, detail.Author)
	assert.Equal(t, "rex", detail.Author.Username)

	t.Run("non-author cannot modify", func(t *testing.T) {
		resp := rpc(t, ts.app, http.MethodPost, "posts.update", map[string]any{"id": postID, "title": "Mine now"}, other)
		assertError(t, resp, http.StatusForbidden, models.CodeForbidden, "Unauthorized")

		resp = rpc(t, ts.app, http.MethodPost, "posts.delete", map[string]any{"id": postID}, other)
		assertError(t, resp, http.StatusForbidden, models.CodeForbidden, "Unauthorized")
	})

	t.Run("author updates partially", func(t *testing.T) {
		resp := rpc(t, ts.app, http.MethodPost, "posts.update", map[string]any{"id": postID, "title": "Beach day"}, author)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = rpc(t, ts.app, http.MethodGet, "posts.getById", map[string]uint{"id": postID})
		var got models.PostDetail
		decode(t, resp, &got)
		assert.Equal(t, "Beach day", got.Title)
		assert.Equal(t, "We went to the **park**.", got.Content)
	})

	t.Run("tags are counted", func(t *testing.T) {
		resp := rpc(t, ts.app, http.MethodGet, "tags.list", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var tags []models.Tag
		decode(t, resp, &tags)
		require.Len(t, tags, 2)
		for _, tag := range tags {
			assert.Equal(t, 1, tag.UsageCount, tag.Name)
		}
	})

	t.Run("author deletes", func(t *testing.T) {
		resp := rpc(t, ts.app, http.MethodPost, "posts.delete", map[string]any{"id": postID}, author)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = rpc(t, ts.app, http.MethodGet, "posts.getById", map[string]uint{"id": postID})
		assertError(t, resp, http.StatusNotFound, models.CodeNotFound, "")
	})
}

func TestPostsListAndDrafts(t *testing.T) {
	ts := newTestServer(t)
	authorID, author := ts.signUp(t, "rex")
	_, other := ts.signUp(t, "fido")

	createPost(t, ts, author, map[string]any{"title": "Published", "status": "published"})
	createPost(t, ts, author, map[string]any{"title": "Draft"})

	resp := rpc(t, ts.app, http.MethodGet, "posts.list", nil)
	var page models.PostPage
	decode(t, resp, &page)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "Published", page.Posts[0].Title)
	assert.Equal(t, 1, page.Total)

	resp = rpc(t, ts.app, http.MethodGet, "posts.listByUser", map[string]uint{"userId": authorID}, author)
	decode(t, resp, &page)
	assert.Len(t, page.Posts, 2)

	resp = rpc(t, ts.app, http.MethodGet, "posts.listByUser", map[string]uint{"userId": authorID}, other)
	decode(t, resp, &page)
	assert.Len(t, page.Posts, 1)

	resp = rpc(t, ts.app, http.MethodGet, "posts.list", map[string]int{"limit": 101})
	assertError(t, resp, http.StatusBadRequest, models.CodeValidation, "")
}

func TestCreatePostRejectsTooManyImages(t *testing.T) {
	ts := newTestServer(t)
	_, author := ts.signUp(t, "rex")

	images := make([]map[string]string, 6)
	for i := range images {
		images[i] = map[string]string{"data": pngBase64(t), "filename": "a.png"}
	}
	resp := rpc(t, ts.app, http.MethodPost, "posts.create", map[string]any{"title": "Too many", "images": images}, author)
	assertError(t, resp, http.StatusBadRequest, models.CodeValidation, "")
	assert.Empty(t, ts.store.Keys())

	resp = rpc(t, ts.app, http.MethodPost, "posts.create", map[string]any{
		"title": "Long", "content": strings.Repeat("w", 10001),
	}, author)
	assertError(t, resp, http.StatusBadRequest, models.CodeValidation, "")
}

func TestSearchIgnoresQueryByDefault(t *testing.T) {
	ts := newTestServer(t)
	_, author := ts.signUp(t, "rex")
	createPost(t, ts, author, map[string]any{"title": "Fetch", "status": "published"})
	createPost(t, ts, author, map[string]any{"title": "Nap", "status": "published"})

	resp := rpc(t, ts.app, http.MethodGet, "search.posts", map[string]string{"query": "fetch"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page models.PostPage
	decode(t, resp, &page)
	assert.Len(t, page.Posts, 2)
}
