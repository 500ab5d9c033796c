package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Thread status values. A thread is opened by a match accept and closed by
// a successful PIN verification.
const (
	ThreadStatusInProgress = "IN_PROGRESS"
	ThreadStatusCompleted  = "COMPLETED"
)

// ChatThread binds exactly one listing (request XOR offer) to a
// student/donor pair. At most one thread exists per (listing, counterparty).
type ChatThread struct {
	ID        string   `gorm:"primaryKey" json:"id"`
	ItemType  ItemType `gorm:"not null" json:"item_type"`
	ItemID    string   `gorm:"not null;index" json:"item_id"`
	RequestID *string  `gorm:"index" json:"request_id,omitempty"`
	OfferID   *string  `gorm:"index" json:"offer_id,omitempty"`
	StudentID string   `gorm:"not null;index" json:"student_id"`
	DonorID   string   `gorm:"not null;index" json:"donor_id"`
	Status    string   `gorm:"not null;default:'IN_PROGRESS'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []Message `gorm:"foreignKey:ThreadID" json:"messages,omitempty"`
}

func (t *ChatThread) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// IsParty reports whether the given user is one of the two thread parties.
func (t *ChatThread) IsParty(userID string) bool {
	return t.StudentID == userID || t.DonorID == userID
}

// Message is a single chat message, ordered by timestamp within its thread.
type Message struct {
	ID       string `gorm:"primaryKey" json:"id"`
	ThreadID string `gorm:"not null;index" json:"thread_id"`
	SenderID string `gorm:"not null;index" json:"sender_id"`
	Sender   *User  `gorm:"foreignKey:SenderID" json:"sender,omitempty"`

	Text     string `gorm:"type:text;not null" json:"text"`
	IsSystem bool   `gorm:"default:false" json:"is_system"`

	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
