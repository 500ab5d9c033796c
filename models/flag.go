package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FlaggedContent is a moderation report against a listing. The (item_id,
// item_type) pair is a denormalized pointer into either listing table, not a
// foreign key; repositories resolve it through the item type tag.
// Invariant: at most one undismissed flag per (item, flagger).
type FlaggedContent struct {
	ID          string   `gorm:"primaryKey" json:"id"`
	ItemID      string   `gorm:"not null;index" json:"item_id"`
	ItemType    ItemType `gorm:"not null" json:"item_type"`
	Reason      string   `gorm:"not null" json:"reason"`
	Description string   `gorm:"type:text" json:"description,omitempty"`
	FlaggedBy   string   `gorm:"not null;index" json:"flagged_by"`
	Dismissed   bool     `gorm:"default:false" json:"dismissed"`

	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (f *FlaggedContent) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
