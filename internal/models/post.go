// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a post in the Ripple application.
// Owner is a pointer so a post whose owner row is gone serializes with a
// null owner instead of being dropped from feeds.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Content string `gorm:"type:text;not null" json:"content"`
	Image   string `json:"image,omitempty"`
	OwnerID uint   `gorm:"not null;index" json:"ownerId"`
	Owner   *User  `gorm:"foreignKey:OwnerID" json:"owner"`
	// Comments is populated on feed reads with author summaries resolved.
	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"commentsCount"`
	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->" json:"likeCount"`
	// LikerIDs is the raw liker-id set, surfaced on the timeline view only.
	LikerIDs  []uint         `gorm:"-" json:"likes,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
