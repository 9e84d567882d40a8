package models

import "time"

// Like represents a user's like on a post.
// The combination of PostID and UserID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_post_user" json:"postId"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_post_user" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
