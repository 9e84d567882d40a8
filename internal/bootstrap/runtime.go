// Package bootstrap prepares the database and redis for the command line tools.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"dogpark/internal/cache"
	"dogpark/internal/config"
	"dogpark/internal/database"
	"dogpark/internal/models"
	"dogpark/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedBreedTags creates the built-in breed tags.
	SeedBreedTags bool
}

// Runtime holds the connections opened by InitRuntime.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// Close releases the connections.
func (r *Runtime) Close() {
	if err := database.Close(r.DB); err != nil {
		log.Printf("error closing database: %v", err)
	}
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
}

// InitRuntime connects to DB and Redis and optionally seeds built-in data.
// Unlike the API server, a failed database connection is fatal here.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	rt := &Runtime{DB: db, Redis: cache.InitRedis(cfg.RedisURL)}

	ctx := context.Background()
	if err := EnsureOwnerAdmin(ctx, db, cfg.OwnerOpenID); err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to promote owner: %w", err)
	}

	if opts.SeedBreedTags {
		if err := seed.BreedTags(ctx, db); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to seed breed tags: %w", err)
		}
	}

	return rt, nil
}

// EnsureOwnerAdmin grants the admin role to the account whose openId matches
// ownerOpenID. Accounts registered before OWNER_OPEN_ID was configured are
// promoted on the next run.
func EnsureOwnerAdmin(ctx context.Context, db *gorm.DB, ownerOpenID string) error {
	if ownerOpenID == "" || db == nil {
		return nil
	}
	res := db.WithContext(ctx).Model(&models.User{}).
		Where("open_id = ? AND role <> ?", ownerOpenID, models.RoleAdmin).
		Update("role", models.RoleAdmin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("owner account %s promoted to admin", ownerOpenID)
	}
	return nil
}

// ErrUserNotFound is returned by SetRole for an unknown user id.
var ErrUserNotFound = errors.New("user not found")

// SetRole changes a user's role and reports whether anything changed.
func SetRole(ctx context.Context, db *gorm.DB, userID uint, role models.Role) (*models.User, bool, error) {
	var user models.User
	if err := db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, err
	}
	if user.Role == role {
		return &user, false, nil
	}
	if err := db.WithContext(ctx).Model(&user).Update("role", role).Error; err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

// ListAdmins returns every admin account, oldest first.
func ListAdmins(ctx context.Context, db *gorm.DB) ([]models.User, error) {
	var admins []models.User
	err := db.WithContext(ctx).Where("role = ?", models.RoleAdmin).Order("id ASC").Find(&admins).Error
	return admins, err
}
