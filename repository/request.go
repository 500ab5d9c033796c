package repository

import (
	"context"
	"strings"

	"github.com/techieroshan/studentsupport/models"

	"gorm.io/gorm"
)

// ListingFilter narrows browse queries. Zero values mean "no filter".
type ListingFilter struct {
	Status string
	City   string
	Diet   string
}

// RequestRepository defines the interface for meal request data operations
type RequestRepository interface {
	Create(ctx context.Context, req *models.MealRequest) error
	GetByID(ctx context.Context, id string) (*models.MealRequest, error)
	GetBySeekerID(ctx context.Context, seekerID string) ([]*models.MealRequest, error)
	List(ctx context.Context, filter ListingFilter) ([]*models.MealRequest, error)
	Update(ctx context.Context, req *models.MealRequest) error
	Delete(ctx context.Context, id string) error
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new meal request repository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *models.MealRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*models.MealRequest, error) {
	var req models.MealRequest
	err := r.db.WithContext(ctx).Preload("Seeker").First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) GetBySeekerID(ctx context.Context, seekerID string) ([]*models.MealRequest, error) {
	var reqs []*models.MealRequest
	err := r.db.WithContext(ctx).
		Preload("Seeker").
		Where("seeker_id = ?", seekerID).
		Order("posted_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *requestRepository) List(ctx context.Context, filter ListingFilter) ([]*models.MealRequest, error) {
	q := r.db.WithContext(ctx).Preload("Seeker")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.City != "" {
		q = q.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(filter.City)+"%")
	}

	var reqs []*models.MealRequest
	if err := q.Order("posted_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}

	// Tag containment is matched against the stored JSON array, which keeps
	// the query portable across postgres and the sqlite test driver.
	if filter.Diet != "" {
		filtered := reqs[:0]
		for _, req := range reqs {
			if jsonArrayContains(req.DietaryNeeds, filter.Diet) {
				filtered = append(filtered, req)
			}
		}
		reqs = filtered
	}

	return reqs, nil
}

func (r *requestRepository) Update(ctx context.Context, req *models.MealRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *requestRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.MealRequest{}, "id = ?", id).Error
}
