package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MealRequest is a seeker-authored listing asking for meal assistance.
type MealRequest struct {
	ID       string `gorm:"primaryKey" json:"id"`
	SeekerID string `gorm:"not null;index" json:"seeker_id"`
	Seeker   *User  `gorm:"foreignKey:SeekerID" json:"seeker,omitempty"`

	City      string   `gorm:"not null" json:"city"`
	State     string   `gorm:"not null" json:"state"`
	Zip       string   `gorm:"not null" json:"zip"`
	Country   string   `gorm:"not null;default:'United States'" json:"country"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	DietaryNeeds json.RawMessage `gorm:"type:json" json:"dietary_needs"`
	MedicalNeeds json.RawMessage `gorm:"type:json" json:"medical_needs"`
	Logistics    json.RawMessage `gorm:"type:json" json:"logistics"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	Availability string          `json:"availability"`
	Frequency    string          `gorm:"not null" json:"frequency"`
	Urgency      string          `gorm:"not null;default:'NORMAL'" json:"urgency"` // NORMAL or URGENT

	Status RequestStatus `gorm:"not null;default:'OPEN'" json:"status"`
	// PreviousStatus snapshots the status held before a flag so dismissal
	// can restore it rather than resetting to OPEN.
	PreviousStatus *RequestStatus `json:"-"`
	CompletionPIN  *string        `gorm:"column:completion_pin" json:"completion_pin,omitempty"`

	PostedAt  time.Time `gorm:"autoCreateTime" json:"posted_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *MealRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// MealOffer is a donor-authored listing offering food.
type MealOffer struct {
	ID      string `gorm:"primaryKey" json:"id"`
	DonorID string `gorm:"not null;index" json:"donor_id"`
	Donor   *User  `gorm:"foreignKey:DonorID" json:"donor,omitempty"`

	City      string   `gorm:"not null" json:"city"`
	State     string   `gorm:"not null" json:"state"`
	Zip       string   `gorm:"not null" json:"zip"`
	Country   string   `gorm:"not null;default:'United States'" json:"country"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Description    string          `gorm:"type:text;not null" json:"description"`
	ImageURL       string          `json:"image_url,omitempty"`
	DietaryTags    json.RawMessage `gorm:"type:json" json:"dietary_tags"`
	MedicalTags    json.RawMessage `gorm:"type:json" json:"medical_tags"`
	Logistics      json.RawMessage `gorm:"type:json" json:"logistics"`
	Availability   string          `json:"availability"`
	Frequency      string          `gorm:"not null" json:"frequency"`
	AvailableUntil time.Time       `gorm:"not null" json:"available_until"`
	IsAnonymous    bool            `gorm:"default:false" json:"is_anonymous"`

	Status         OfferStatus  `gorm:"not null;default:'AVAILABLE'" json:"status"`
	PreviousStatus *OfferStatus `json:"-"`
	CompletionPIN  *string      `gorm:"column:completion_pin" json:"completion_pin,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *MealOffer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
