package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"dogpark/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPost(t *testing.T, repo PostRepository, userID uint, title string, status models.PostStatus, createdAt time.Time) *models.Post {
	t.Helper()
	p := &models.Post{UserID: userID, Title: title, Content: title + " body", Status: status, CreatedAt: createdAt}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func titles(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestPostRepository_ListPublished(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	seedPost(t, repo, 1, "Old walk", models.PostStatusPublished, base)
	seedPost(t, repo, 1, "Secret draft", models.PostStatusDraft, base.Add(time.Hour))
	seedPost(t, repo, 2, "New Puppy", models.PostStatusPublished, base.Add(2*time.Hour))

	posts, err := repo.ListPublished(ctx, PostFilter{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, []string{"New Puppy", "Old walk"}, titles(posts))

	posts, err = repo.ListPublished(ctx, PostFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Old walk"}, titles(posts))

	posts, err = repo.ListPublished(ctx, PostFilter{Query: "puppy", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, []string{"New Puppy"}, titles(posts))
}

func TestPostRepository_ListPublishedByTag(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	tags := NewTagRepository(db)
	ctx := context.Background()
	now := time.Now()

	corgi := seedPost(t, repo, 1, "Corgi day", models.PostStatusPublished, now)
	seedPost(t, repo, 1, "Husky day", models.PostStatusPublished, now)

	tag, err := tags.GetOrCreate(ctx, "corgi")
	require.NoError(t, err)
	_, err = tags.Link(ctx, corgi.ID, tag.ID)
	require.NoError(t, err)

	posts, err := repo.ListPublished(ctx, PostFilter{Tags: []string{"corgi"}, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, []string{"Corgi day"}, titles(posts))
}

func TestPostRepository_ListPublishedRequiresEveryTag(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	tags := NewTagRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	link := func(post *models.Post, names ...string) {
		t.Helper()
		for _, name := range names {
			tag, err := tags.GetOrCreate(ctx, name)
			require.NoError(t, err)
			_, err = tags.Link(ctx, post.ID, tag.ID)
			require.NoError(t, err)
		}
	}
	link(seedPost(t, repo, 1, "Husky howl", models.PostStatusPublished, base), "husky")
	link(seedPost(t, repo, 1, "Corgi sprint", models.PostStatusPublished, base.Add(time.Hour)), "corgi")

	posts, err := repo.ListPublished(ctx, PostFilter{Tags: []string{"corgi", "husky"}, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, posts)

	link(seedPost(t, repo, 2, "Park meetup", models.PostStatusPublished, base.Add(2*time.Hour)), "corgi", "husky")

	posts, err = repo.ListPublished(ctx, PostFilter{Tags: []string{"corgi", "husky", "corgi"}, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, []string{"Park meetup"}, titles(posts))
}

func TestPostRepository_ListByUser(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now()
	seedPost(t, repo, 1, "Published", models.PostStatusPublished, now)
	seedPost(t, repo, 1, "Draft", models.PostStatusDraft, now.Add(time.Minute))
	seedPost(t, repo, 2, "Someone else", models.PostStatusPublished, now)

	own, err := repo.ListByUser(ctx, 1, true, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Draft", "Published"}, titles(own))

	public, err := repo.ListByUser(ctx, 1, false, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Published"}, titles(public))
}

func TestPostRepository_IDsByUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	now := time.Now()

	a := seedPost(t, repo, 1, "Published", models.PostStatusPublished, now)
	b := seedPost(t, repo, 1, "Draft", models.PostStatusDraft, now)
	seedPost(t, repo, 2, "Someone else", models.PostStatusPublished, now)

	ids, err := repo.IDsByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, ids)
}

func TestPostRepository_UpdateDelete(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))
	ctx := context.Background()
	p := seedPost(t, repo, 1, "Before", models.PostStatusDraft, time.Now())

	require.NoError(t, repo.Update(ctx, p.ID, map[string]any{"title": "After", "status": models.PostStatusPublished}))
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)
	assert.Equal(t, models.PostStatusPublished, got.Status)

	assert.Equal(t, models.CodeNotFound, models.ErrorCode(repo.Update(ctx, 999, map[string]any{"title": "x"})))

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(repo.Delete(ctx, p.ID)))
}

func TestPostRepository_Counters(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))
	ctx := context.Background()
	p := seedPost(t, repo, 1, "Counted", models.PostStatusPublished, time.Now())

	require.NoError(t, repo.SetCounter(ctx, p.ID, LikeCountColumn, 3))
	require.NoError(t, repo.IncrementCounter(ctx, p.ID, LikeCountColumn, 1))
	require.NoError(t, repo.IncrementCounter(ctx, p.ID, CommentCountColumn, -1))
	require.NoError(t, repo.SetCounter(ctx, p.ID, CommentCountColumn, -5))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.LikeCount)
	assert.Equal(t, 0, got.CommentCount)

	assert.Error(t, repo.SetCounter(ctx, p.ID, "title", 1))
}

func TestPostRepository_IncrementCounterSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "like_count"=CASE WHEN like_count + $1 < 0 THEN 0 ELSE like_count + $2 END WHERE id = $3`)).
		WithArgs(-1, -1, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.IncrementCounter(context.Background(), 5, LikeCountColumn, -1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_CreateSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	post := &models.Post{UserID: 1, Title: "Test Post", Content: "Content"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), post))
	assert.Equal(t, uint(1), post.ID)
	assert.Equal(t, models.PostStatusDraft, post.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
