// Package models contains the persisted entities and the application error taxonomy.
package models

import "time"

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// LoginMethodEmail marks accounts created through email/password registration.
const LoginMethodEmail = "email"

// User is a registered dog owner.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OpenID       string    `gorm:"size:64;uniqueIndex;not null" json:"openId"`
	Username     *string   `gorm:"size:20;uniqueIndex" json:"username"`
	Name         string    `json:"name"`
	Email        *string   `gorm:"size:320;uniqueIndex" json:"email"`
	PasswordHash string    `json:"-"`
	ProfileImage string    `json:"profileImage"`
	Bio          string    `gorm:"type:text" json:"bio"`
	LoginMethod  string    `gorm:"size:64" json:"loginMethod"`
	Role         Role      `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastSignedIn time.Time `json:"lastSignedIn"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserSummary is the public author card embedded in post and comment views.
type UserSummary struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage"`
}

// Summary returns the public card for u.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	s := &UserSummary{ID: u.ID, Name: u.Name, ProfileImage: u.ProfileImage}
	if u.Username != nil {
		s.Username = *u.Username
	}
	return s
}
