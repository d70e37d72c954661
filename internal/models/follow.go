package models

import (
	"time"
)

// Follow represents a directed follow edge between two authors.
// The composite primary key keeps the (follower, followee) pair unique
// at the storage layer, so concurrent follow requests cannot duplicate
// the edge even when both pass the application-level existence check.
type Follow struct {
	FollowerID int64     `gorm:"primaryKey;column:follower_id"`
	FolloweeID int64     `gorm:"primaryKey;column:followee_id"`
	CreatedAt  time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Follower *Author `gorm:"foreignKey:FollowerID;references:ID"`
	Followee *Author `gorm:"foreignKey:FolloweeID;references:ID"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "chirp_follows"
}
