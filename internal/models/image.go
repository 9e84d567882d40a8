package models

import "time"

// MaxImagesPerPost caps uploads on posts.create.
const MaxImagesPerPost = 5

// Image is an uploaded picture attached to a post.
type Image struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	FileKey   string    `gorm:"type:text;not null" json:"fileKey"`
	SortOrder int       `gorm:"not null;default:0" json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}
