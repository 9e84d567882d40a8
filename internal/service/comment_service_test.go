package service

import (
	"context"
	"strings"
	"testing"

	"dogpark/internal/models"
	"dogpark/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commentCount(t *testing.T, env *testEnv, postID uint) int {
	t.Helper()
	p, err := env.postRepo.GetByID(context.Background(), postID)
	require.NoError(t, err)
	return p.CommentCount
}

func TestCommentService_CreateAndDelete(t *testing.T) {
	for _, flags := range []string{"", "atomic_counters=on"} {
		t.Run("flags="+flags, func(t *testing.T) {
			env := newEnv(t, flags)
			ctx := context.Background()
			owner := env.user(t, "rexowner")
			other := env.user(t, "bellaowner")
			postID := env.post(t, owner.ID, "Walkies", models.PostStatusPublished)

			first, err := env.comments.Create(ctx, other.ID, CreateCommentInput{PostID: postID, Content: "<b>Cute</b> pup!"})
			require.NoError(t, err)
			_, err = env.comments.Create(ctx, owner.ID, CreateCommentInput{PostID: postID, Content: "Thanks"})
			require.NoError(t, err)
			assert.Equal(t, 2, commentCount(t, env, postID))

			list, err := env.comments.List(ctx, ListCommentsInput{PostID: postID})
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "Cute pup!", list[0].Content)
			assert.Equal(t, "bellaowner", list[0].Author.Username)

			err = env.comments.Delete(ctx, owner.ID, DeleteCommentInput{ID: first})
			assertCode(t, err, models.CodeForbidden)
			assertMessage(t, err, "Unauthorized")

			require.NoError(t, env.comments.Delete(ctx, other.ID, DeleteCommentInput{ID: first}))
			assert.Equal(t, 1, commentCount(t, env, postID))

			err = env.comments.Delete(ctx, other.ID, DeleteCommentInput{ID: first})
			assertMessage(t, err, "Unauthorized")
		})
	}
}

func TestCommentService_DeleteFloorsAtZero(t *testing.T) {
	env := newEnv(t, "")
	ctx := context.Background()
	owner := env.user(t, "rexowner")
	postID := env.post(t, owner.ID, "Walkies", models.PostStatusPublished)

	id, err := env.comments.Create(ctx, owner.ID, CreateCommentInput{PostID: postID, Content: "hi"})
	require.NoError(t, err)
	require.NoError(t, env.postRepo.SetCounter(ctx, postID, repository.CommentCountColumn, 0))

	require.NoError(t, env.comments.Delete(ctx, owner.ID, DeleteCommentInput{ID: id}))
	assert.Equal(t, 0, commentCount(t, env, postID))
}

func TestCommentService_CreateRejects(t *testing.T) {
	env := newEnv(t, "")
	ctx := context.Background()
	owner := env.user(t, "rexowner")
	postID := env.post(t, owner.ID, "Walkies", models.PostStatusPublished)

	_, err := env.comments.Create(ctx, owner.ID, CreateCommentInput{PostID: postID, Content: strings.Repeat("a", 501)})
	assertValidationError(t, err)

	_, err = env.comments.Create(ctx, owner.ID, CreateCommentInput{PostID: postID, Content: "<script>x</script>"})
	assertValidationError(t, err)

	_, err = env.comments.Create(ctx, owner.ID, CreateCommentInput{PostID: 999, Content: "hello"})
	assertCode(t, err, models.CodeNotFound)

	assert.Equal(t, 0, commentCount(t, env, postID))
}

func TestCommentService_InvalidatesPostDetail(t *testing.T) {
	env := newEnv(t, "")
	ctx := context.Background()
	owner := env.user(t, "rexowner")
	postID := env.post(t, owner.ID, "Walkies", models.PostStatusPublished)

	detail, err := env.posts.GetByID(ctx, PostIDInput{ID: postID})
	require.NoError(t, err)
	assert.Empty(t, detail.Comments)

	_, err = env.comments.Create(ctx, owner.ID, CreateCommentInput{PostID: postID, Content: "first!"})
	require.NoError(t, err)

	detail, err = env.posts.GetByID(ctx, PostIDInput{ID: postID})
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, 1, detail.CommentCount)
}
