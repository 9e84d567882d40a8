package seed

import (
	"context"
	"fmt"

	"dogpark/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	MaxComments int
	MaxLikes    int
	ShouldClean bool
	SeedOptions
}

// Summary counts what Seed created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
}

// Seed populates the database with dog owners, their posts and engagement.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	f, err := NewFactory(db.WithContext(ctx), opts.SeedOptions)
	if err != nil {
		return nil, err
	}
	f.logf("🌱 Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}
	if !opts.DryRun {
		if err := BreedTags(ctx, db); err != nil {
			return nil, err
		}
	}

	sum := &Summary{}
	users := make([]*models.User, 0, opts.NumUsers)
	for range opts.NumUsers {
		u, err := f.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	f.logf("✓ %d users created", sum.Users)
	if len(users) == 0 {
		return sum, nil
	}

	for range opts.NumPosts {
		author := users[f.faker.Number(0, len(users)-1)]
		post, err := f.CreatePost(author)
		if err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		sum.Posts++

		for range f.faker.Number(0, max(opts.MaxComments, 0)) {
			commenter := users[f.faker.Number(0, len(users)-1)]
			if _, err := f.CreateComment(commenter, post); err != nil {
				return nil, fmt.Errorf("failed to create comment: %w", err)
			}
			sum.Comments++
		}

		// Likes are unique per (post, user).
		order := make([]int, len(users))
		for i := range order {
			order[i] = i
		}
		f.faker.ShuffleInts(order)
		likes := min(f.faker.Number(0, max(opts.MaxLikes, 0)), len(users))
		for _, i := range order[:likes] {
			if err := f.CreateLike(users[i], post); err != nil {
				return nil, fmt.Errorf("failed to create like: %w", err)
			}
			sum.Likes++
		}
	}
	f.logf("✓ %d posts, %d comments, %d likes created", sum.Posts, sum.Comments, sum.Likes)
	return sum, nil
}

// clearData removes every row the seeder can create.
func clearData(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE post_tags, tags, likes, comments, images, posts, users RESTART IDENTITY CASCADE`).Error
	}
	for _, table := range []string{"post_tags", "tags", "likes", "comments", "images", "posts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
