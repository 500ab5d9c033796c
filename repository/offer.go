package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/techieroshan/studentsupport/models"

	"gorm.io/gorm"
)

// OfferRepository defines the interface for meal offer data operations
type OfferRepository interface {
	Create(ctx context.Context, offer *models.MealOffer) error
	GetByID(ctx context.Context, id string) (*models.MealOffer, error)
	GetByDonorID(ctx context.Context, donorID string) ([]*models.MealOffer, error)
	List(ctx context.Context, filter ListingFilter) ([]*models.MealOffer, error)
	CountByDonorSince(ctx context.Context, donorID string, since time.Time) (int64, error)
	Update(ctx context.Context, offer *models.MealOffer) error
	Delete(ctx context.Context, id string) error
}

type offerRepository struct {
	db *gorm.DB
}

// NewOfferRepository creates a new meal offer repository
func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Create(ctx context.Context, offer *models.MealOffer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *offerRepository) GetByID(ctx context.Context, id string) (*models.MealOffer, error) {
	var offer models.MealOffer
	err := r.db.WithContext(ctx).Preload("Donor").First(&offer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepository) GetByDonorID(ctx context.Context, donorID string) ([]*models.MealOffer, error) {
	var offers []*models.MealOffer
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}

func (r *offerRepository) List(ctx context.Context, filter ListingFilter) ([]*models.MealOffer, error) {
	q := r.db.WithContext(ctx).Preload("Donor")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.City != "" {
		q = q.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(filter.City)+"%")
	}

	var offers []*models.MealOffer
	if err := q.Order("created_at DESC").Find(&offers).Error; err != nil {
		return nil, err
	}

	if filter.Diet != "" {
		filtered := offers[:0]
		for _, offer := range offers {
			if jsonArrayContains(offer.DietaryTags, filter.Diet) {
				filtered = append(filtered, offer)
			}
		}
		offers = filtered
	}

	return offers, nil
}

// CountByDonorSince backs the weekly capacity gate: it recomputes the
// trailing-window offer count from stored history on every creation attempt.
func (r *offerRepository) CountByDonorSince(ctx context.Context, donorID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MealOffer{}).
		Where("donor_id = ? AND created_at >= ?", donorID, since).
		Count(&count).Error
	return count, err
}

func (r *offerRepository) Update(ctx context.Context, offer *models.MealOffer) error {
	return r.db.WithContext(ctx).Save(offer).Error
}

func (r *offerRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.MealOffer{}, "id = ?", id).Error
}

// jsonArrayContains reports whether the stored JSON string array includes v.
func jsonArrayContains(raw json.RawMessage, v string) bool {
	if len(raw) == 0 {
		return false
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return false
	}
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
