package models

import (
	"time"
)

// Idea is the authoritative row. Seq records insertion order and breaks
// created_at ties in the recency ordering.
type Idea struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	Seq         int64     `json:"-" gorm:"autoIncrement;uniqueIndex"`
	OwnerID     string    `json:"ownerID" gorm:"type:text;index;not null"`
	Title       string    `json:"title" gorm:"type:text;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Domain      *string   `json:"domain,omitempty" gorm:"type:text"`
	AuthorName  string    `json:"authorName" gorm:"type:text;not null"`
	Status      string    `json:"status" gorm:"type:text;not null;default:'open'"`
	CreatedAt   time.Time `json:"createdAt" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}
