package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole determines which parts of the marketplace a user can act in.
type UserRole string

const (
	RoleGuest  UserRole = "GUEST"
	RoleSeeker UserRole = "SEEKER"
	RoleDonor  UserRole = "DONOR"
	RoleAdmin  UserRole = "ADMIN"
)

// VerificationStatus tracks how far a user has progressed through identity checks.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "UNVERIFIED"
	VerificationPending    VerificationStatus = "PENDING"
	VerificationVerified   VerificationStatus = "VERIFIED"
)

// User represents a registered participant: seeker, donor, or admin.
type User struct {
	ID           string   `gorm:"primaryKey" json:"id"`
	Email        string   `gorm:"unique;not null;index" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"not null;default:'GUEST'" json:"role"`
	DisplayName  string   `gorm:"not null" json:"display_name"`
	AvatarID     int      `gorm:"default:1" json:"avatar_id"`

	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `gorm:"not null" json:"city"`
	State   string `gorm:"not null" json:"state"`
	Zip     string `gorm:"not null" json:"zip"`
	Country string `gorm:"not null;default:'United States'" json:"country"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Radius    float64  `gorm:"default:10" json:"radius"`

	EmailVerified      bool               `gorm:"default:false" json:"email_verified"`
	PhoneVerified      bool               `gorm:"default:false" json:"phone_verified"`
	VerificationStatus VerificationStatus `gorm:"default:'UNVERIFIED'" json:"verification_status"`

	Preferences json.RawMessage `gorm:"type:json" json:"preferences,omitempty"`
	Languages   json.RawMessage `gorm:"type:json" json:"languages,omitempty"`
	IsAnonymous bool            `gorm:"default:false" json:"is_anonymous"`

	// Donor capacity: trailing-week offer count is checked against the limit
	// on every offer creation.
	WeeklyMealLimit    *int `json:"weekly_meal_limit,omitempty"`
	CurrentWeeklyMeals int  `gorm:"default:0" json:"current_weekly_meals"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Requests []MealRequest `gorm:"foreignKey:SeekerID" json:"requests,omitempty"`
	Offers   []MealOffer   `gorm:"foreignKey:DonorID" json:"offers,omitempty"`
}

// BeforeCreate assigns a UUID primary key when none is provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// VerificationCode is a short-lived one-time code for email or phone checks.
type VerificationCode struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null;index" json:"user_id"`
	Code      string    `gorm:"not null" json:"-"`
	CodeType  string    `gorm:"not null" json:"code_type"` // "email" or "phone"
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	IsUsed    bool      `gorm:"default:false" json:"is_used"`
	CreatedAt time.Time `json:"created_at"`
}

func (v *VerificationCode) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
