package models

import "time"

// PostStatus is the publication state of a post. Posts move freely between
// draft and published.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Post is a dog owner's post. LikeCount and CommentCount are denormalized and
// maintained by the like and comment flows, never recomputed.
type Post struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"userId"`
	Title        string     `gorm:"size:100;not null" json:"title"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	Status       PostStatus `gorm:"size:16;not null;default:draft;index" json:"status"`
	LikeCount    int        `gorm:"not null;default:0" json:"likeCount"`
	CommentCount int        `gorm:"not null;default:0" json:"commentCount"`
	CreatedAt    time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// PostPage is the list shape shared by posts.list, tags.search and search.posts.
type PostPage struct {
	Posts []Post `json:"posts"`
	Total int    `json:"total"`
}

// PostDetail aggregates everything posts.getById returns.
type PostDetail struct {
	Post
	ContentHTML string        `json:"contentHtml"`
	Author      *UserSummary  `json:"author"`
	Images      []Image       `json:"images"`
	Comments    []CommentView `json:"comments"`
	Tags        []PostTagView `json:"tags"`
}
