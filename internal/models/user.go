package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account. Password and RefreshToken are
// never serialized.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Password     string         `gorm:"not null" json:"-"`
	Bio          string         `gorm:"type:text" json:"bio,omitempty"`
	ProfileImage string         `json:"profileImage,omitempty"`
	RefreshToken string         `json:"-"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Posts    []Post    `gorm:"foreignKey:OwnerID" json:"posts,omitempty"`
	Comments []Comment `gorm:"foreignKey:AuthorID" json:"-"`
}

// UserSummary is the compact user shape embedded in likers lists and
// follow responses.
type UserSummary struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Summary returns the compact public view of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		Username:     u.Username,
		ProfileImage: u.ProfileImage,
	}
}

// ProfileSummary is the public profile view. IsFollowing reflects the
// requesting viewer and is false for anonymous requests.
type ProfileSummary struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Bio            string `json:"bio,omitempty"`
	ProfileImage   string `json:"profileImage,omitempty"`
	PostsCount     int64  `json:"postsCount"`
	FollowersCount int64  `json:"followersCount"`
	FollowingCount int64  `json:"followingCount"`
	IsFollowing    bool   `json:"isFollowing"`
}
