// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"

	"dogpark/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// SeedOptions tune the Factory.
type SeedOptions struct {
	// DryRun builds entities without writing them.
	DryRun bool
	// SkipBcrypt hashes with the minimum cost.
	SkipBcrypt bool
	// MaxDays spreads created_at over this many days back.
	MaxDays int
	// RandSeed makes fixtures reproducible when non-zero.
	RandSeed int64
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	opts   SeedOptions
	faker  *gofakeit.Faker
	breeds []Breed
	hash   string
	used   map[string]struct{}
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) (*Factory, error) {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	breeds, err := LoadBreeds()
	if err != nil {
		return nil, err
	}
	cost := bcrypt.DefaultCost
	if opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return nil, err
	}
	return &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(seed),
		breeds: breeds,
		hash:   string(hash),
		used:   make(map[string]struct{}),
		nextID: 1000,
	}, nil
}

func (f *Factory) breed() Breed {
	return f.breeds[f.faker.Number(0, len(f.breeds)-1)]
}

func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}

func (f *Factory) persist(v any, id *uint) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		return nil
	}
	return f.db.Create(v).Error
}

// BuildUser returns an unsaved dog owner account.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	var username string
	for {
		first := strings.ToLower(f.faker.FirstName())
		if len(first) > 14 {
			first = first[:14]
		}
		username = first + fmt.Sprint(f.faker.Number(100, 99999))
		if _, taken := f.used[username]; !taken {
			break
		}
	}
	f.used[username] = struct{}{}
	email := username + "@example.com"
	b := f.breed()
	user := &models.User{
		OpenID:       "email_" + email,
		Username:     &username,
		Name:         username,
		Email:        &email,
		PasswordHash: f.hash,
		Bio:          fmt.Sprintf("Human of %s the %s.", f.faker.PetName(), b.Label),
		LoginMethod:  models.LoginMethodEmail,
		Role:         models.RoleUser,
		LastSignedIn: time.Now(),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser constructs and persists a sample `models.User`.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.persist(user, &user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost returns an unsaved post by user along with the breed it is about.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) (*models.Post, Breed) {
	b := f.breed()
	pet := f.faker.PetName()
	post := &models.Post{
		UserID: user.ID,
		Title:  fmt.Sprintf("%s the %s", pet, b.Label),
		Content: fmt.Sprintf("## %s\n\n%s\n\n- favourite toy: %s\n- walks per day: %d",
			pet, f.faker.Paragraph(1, 3, 8, "\n\n"), f.faker.Noun(), f.faker.Number(1, 4)),
		Status:    models.PostStatusPublished,
		CreatedAt: f.createdAt(),
	}
	if len(post.Title) > 100 {
		post.Title = post.Title[:100]
	}
	if f.faker.Number(1, 5) == 1 {
		post.Status = models.PostStatusDraft
	}
	for _, override := range overrides {
		override(post)
	}
	return post, b
}

// CreatePost persists a post and tags it with its breed.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post, b := f.BuildPost(user, overrides...)
	if err := f.persist(post, &post.ID); err != nil {
		return nil, err
	}
	if err := f.TagPost(post, b.Name); err != nil {
		return nil, err
	}
	return post, nil
}

// TagPost links post to the named tag, creating it when needed, and keeps
// usage_count in step with the link rows.
func (f *Factory) TagPost(post *models.Post, name string) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Transaction(func(tx *gorm.DB) error {
		tag := models.Tag{Name: name}
		if err := tx.Where("name = ?", name).FirstOrCreate(&tag).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.PostTag{PostID: post.ID, TagID: tag.ID}).Error; err != nil {
			return err
		}
		return tx.Model(&tag).UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error
	})
}

// CreateComment persists a comment by user on post and bumps the post's
// comment_count.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:   f.faker.Sentence(f.faker.Number(3, 12)),
		UserID:    user.ID,
		PostID:    post.ID,
		CreatedAt: post.CreatedAt.Add(time.Duration(f.faker.Number(1, 600)) * time.Minute),
	}
	for _, override := range overrides {
		override(comment)
	}
	if err := f.persist(comment, &comment.ID); err != nil {
		return nil, err
	}
	post.CommentCount++
	return comment, f.bump(post.ID, "comment_count")
}

// CreateLike persists a like from `user` on `post` and bumps like_count.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	if err := f.persist(like, &like.ID); err != nil {
		return err
	}
	post.LikeCount++
	return f.bump(post.ID, "like_count")
}

func (f *Factory) bump(postID uint, column string) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

func (f *Factory) logf(format string, args ...any) {
	if f.opts.DryRun {
		format = "[dry-run] " + format
	}
	log.Printf(format, args...)
}
