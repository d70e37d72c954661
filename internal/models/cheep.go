package models

import (
	"time"
)

// MaxCheepLength is the upper bound on cheep text length.
const MaxCheepLength = 160

// Cheep represents a short post owned by exactly one author
type Cheep struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Text      string    `gorm:"type:varchar(160);not null;column:text"`
	ImageURL  string    `gorm:"type:varchar(1024);not null;default:'';column:image_url"`
	AuthorID  int64     `gorm:"not null;index:chirp_cheeps_ix1;column:author_id"`
	CreatedAt time.Time `gorm:"not null;index:chirp_cheeps_ix2;column:created_at"`

	// Relationships
	Author *Author `gorm:"foreignKey:AuthorID;references:ID"`
}

// TableName specifies the table name for Cheep
func (Cheep) TableName() string {
	return "chirp_cheeps"
}
