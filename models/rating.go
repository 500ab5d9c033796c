package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rating is a post-transaction review: a directed edge from reviewer to
// reviewed user, tied to the completed listing's ID.
type Rating struct {
	ID            string `gorm:"primaryKey" json:"id"`
	FromUserID    string `gorm:"not null;index" json:"from_user_id"`
	FromUser      *User  `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
	ToUserID      string `gorm:"not null;index" json:"to_user_id"`
	TransactionID string `gorm:"not null" json:"transaction_id"`
	Stars         int    `gorm:"not null" json:"stars"`
	Comment       string `gorm:"type:text" json:"comment"`
	IsPublic      bool   `gorm:"default:true" json:"is_public"`

	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (r *Rating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
