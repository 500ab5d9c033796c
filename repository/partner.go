package repository

import (
	"context"

	"github.com/techieroshan/studentsupport/models"

	"gorm.io/gorm"
)

// PartnerRepository defines the interface for donor partner directory operations
type PartnerRepository interface {
	Create(ctx context.Context, partner *models.DonorPartner) error
	GetByID(ctx context.Context, id string) (*models.DonorPartner, error)
	List(ctx context.Context) ([]*models.DonorPartner, error)
	Delete(ctx context.Context, id string) error
}

type partnerRepository struct {
	db *gorm.DB
}

// NewPartnerRepository creates a new donor partner repository
func NewPartnerRepository(db *gorm.DB) PartnerRepository {
	return &partnerRepository{db: db}
}

func (r *partnerRepository) Create(ctx context.Context, partner *models.DonorPartner) error {
	return r.db.WithContext(ctx).Create(partner).Error
}

func (r *partnerRepository) GetByID(ctx context.Context, id string) (*models.DonorPartner, error) {
	var partner models.DonorPartner
	err := r.db.WithContext(ctx).First(&partner, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepository) List(ctx context.Context) ([]*models.DonorPartner, error) {
	var partners []*models.DonorPartner
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&partners).Error
	return partners, err
}

func (r *partnerRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.DonorPartner{}, "id = ?", id).Error
}
