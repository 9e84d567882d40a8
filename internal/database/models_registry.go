package database

import "dogpark/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Image{},
		&models.Comment{},
		&models.Like{},
		&models.Tag{},
		&models.PostTag{},
	}
}
