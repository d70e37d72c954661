package models

import (
	"time"
)

// Author represents a Chirp author
type Author struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `gorm:"type:varchar(64);not null;uniqueIndex:chirp_authors_ux1;column:name"`
	Email     string    `gorm:"type:varchar(256);not null;column:email"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Cheeps []Cheep `gorm:"foreignKey:AuthorID;references:ID"`
}

// TableName specifies the table name for Author
func (Author) TableName() string {
	return "chirp_authors"
}

// PlaceholderEmail returns the contact address derived for authors
// created implicitly on their first post or first follow reference.
func PlaceholderEmail(name string) string {
	return name + "@example.com"
}
