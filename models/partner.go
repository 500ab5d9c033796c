package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DonorPartner is an entry in the public donor-partner directory. It is
// admin-managed display data with no relation to transactional listings.
type DonorPartner struct {
	ID                       string `gorm:"primaryKey" json:"id"`
	Name                     string `gorm:"not null" json:"name"`
	Category                 string `gorm:"not null" json:"category"`
	Tier                     string `gorm:"not null" json:"tier"`
	LogoURL                  string `json:"logo_url,omitempty"`
	WebsiteURL               string `json:"website_url,omitempty"`
	TotalContributionDisplay string `gorm:"not null" json:"total_contribution_display"`
	IsAnonymous              bool   `gorm:"default:false" json:"is_anonymous"`
	AnonymousName            string `json:"anonymous_name,omitempty"`
	Quote                    string `gorm:"type:text" json:"quote,omitempty"`
	Location                 string `json:"location,omitempty"`
	Since                    string `gorm:"not null" json:"since"`
	IsRecurring              bool   `gorm:"default:false" json:"is_recurring"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *DonorPartner) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
