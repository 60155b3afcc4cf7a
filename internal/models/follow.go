package models

import (
	"time"
)

// Follow is a directed follow edge: Follower follows Followee.
// The pair must be unique, which makes follow/unfollow idempotent
// set-membership operations.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follower_followee" json:"followerId"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follower_followee" json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`

	// Relationships
	Follower User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Followee User `gorm:"foreignKey:FolloweeID" json:"followee,omitempty"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
