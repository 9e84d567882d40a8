package service

import (
	"context"
	"testing"

	"dogpark/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeService_ToggleTwiceRestoresState(t *testing.T) {
	for _, flags := range []string{"", "atomic_counters=on"} {
		t.Run("flags="+flags, func(t *testing.T) {
			env := newEnv(t, flags)
			ctx := context.Background()
			owner := env.user(t, "rexowner")
			fan := env.user(t, "bellaowner")
			postID := env.post(t, owner.ID, "Walkies", models.PostStatusPublished)

			liked, err := env.likes.Toggle(ctx, fan.ID, LikeInput{PostID: postID})
			require.NoError(t, err)
			assert.True(t, liked)

			isLiked, err := env.likes.IsLiked(ctx, fan.ID, LikeInput{PostID: postID})
			require.NoError(t, err)
			assert.True(t, isLiked)

			p, err := env.postRepo.GetByID(ctx, postID)
			require.NoError(t, err)
			assert.Equal(t, 1, p.LikeCount)

			liked, err = env.likes.Toggle(ctx, fan.ID, LikeInput{PostID: postID})
			require.NoError(t, err)
			assert.False(t, liked)

			p, err = env.postRepo.GetByID(ctx, postID)
			require.NoError(t, err)
			assert.Equal(t, 0, p.LikeCount)

			isLiked, err = env.likes.IsLiked(ctx, fan.ID, LikeInput{PostID: postID})
			require.NoError(t, err)
			assert.False(t, isLiked)
		})
	}
}

func TestLikeService_Rejects(t *testing.T) {
	env := newEnv(t, "")
	fan := env.user(t, "bellaowner")

	_, err := env.likes.Toggle(context.Background(), fan.ID, LikeInput{})
	assertValidationError(t, err)

	_, err = env.likes.Toggle(context.Background(), fan.ID, LikeInput{PostID: 404})
	assertCode(t, err, models.CodeNotFound)
}
