package models

import "time"

// MaxTagsPerPost caps tag links on posts.create.
const MaxTagsPerPost = 5

// Tag is a free-form label. UsageCount mirrors the PostTag rows referencing it.
type Tag struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:20;uniqueIndex;not null" json:"name"`
	UsageCount int       `gorm:"not null;default:0;index" json:"usageCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PostTag links a post to a tag.
type PostTag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_tag" json:"postId"`
	TagID     uint      `gorm:"not null;uniqueIndex:idx_post_tag;index" json:"tagId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostTagView is a tag link with the tag name resolved.
type PostTagView struct {
	ID     uint   `json:"id"`
	PostID uint   `json:"postId"`
	TagID  uint   `json:"tagId"`
	Name   string `json:"name"`
}
