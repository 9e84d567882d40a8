package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"dogpark/internal/cache"
	"dogpark/internal/config"
	"dogpark/internal/database"
	"dogpark/internal/featureflags"
	"dogpark/internal/models"
	"dogpark/internal/repository"
	"dogpark/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertMessage(t *testing.T, err error, msg string) {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, msg, appErr.Message)
}

func pngBase64(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// testEnv wires every service against one in-memory sqlite database.
type testEnv struct {
	db       *gorm.DB
	store    *storage.MemoryStore
	users    repository.UserRepository
	postRepo repository.PostRepository
	tagRepo  repository.TagRepository
	auth     *AuthService
	profiles *UserService
	posts    *PostService
	comments *CommentService
	likes    *LikeService
	tags     *TagService
	search   *SearchService
}

func newEnv(t *testing.T, flags string) *testEnv {
	t.Helper()
	db, err := database.Connect(&config.Config{Env: "test", DBDriver: "sqlite", DatabaseURL: "file::memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store := storage.NewMemoryStore("/media")
	c := cache.New(nil)
	ff := featureflags.NewManager(flags)
	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)
	likes := repository.NewLikeRepository(db)
	tags := repository.NewTagRepository(db)
	images := repository.NewImageRepository(db)

	return &testEnv{
		db:       db,
		store:    store,
		users:    users,
		postRepo: posts,
		tagRepo:  tags,
		auth:     NewAuthService(users, "").WithBcryptCost(4),
		profiles: NewUserService(users, posts, store, c, 1<<20),
		posts: NewPostService(PostServiceDeps{
			Posts: posts, Images: images, Comments: comments, Tags: tags, Users: users,
			Store: store, Cache: c, Flags: ff, MaxUploadBytes: 1 << 20,
		}),
		comments: NewCommentService(comments, posts, users, c, ff),
		likes:    NewLikeService(likes, posts, c, ff),
		tags:     NewTagService(tags, posts, c, ff),
		search:   NewSearchService(posts, ff),
	}
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	email := name + "@dogpark.dev"
	require.NoError(t, e.auth.Register(context.Background(), RegisterInput{
		Email: email, Password: "goodboy123", Username: name,
	}))
	u, err := e.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func (e *testEnv) post(t *testing.T, userID uint, title string, status models.PostStatus) uint {
	t.Helper()
	id, err := e.posts.Create(context.Background(), userID, CreatePostInput{Title: title, Content: "body of " + title, Status: status})
	require.NoError(t, err)
	// Keep created_at strictly increasing between posts.
	time.Sleep(2 * time.Millisecond)
	return id
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte, string) (*storage.Object, error) {
	return nil, errors.New("bucket unavailable")
}
