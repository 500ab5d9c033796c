package repository

import (
	"context"

	"github.com/techieroshan/studentsupport/models"

	"gorm.io/gorm"
)

// RatingRepository defines the interface for rating data operations
type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	ListPublic(ctx context.Context, toUserID string) ([]*models.Rating, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

// ListPublic returns public ratings, optionally narrowed to one reviewed user.
func (r *ratingRepository) ListPublic(ctx context.Context, toUserID string) ([]*models.Rating, error) {
	q := r.db.WithContext(ctx).
		Preload("FromUser").
		Where("is_public = ?", true)
	if toUserID != "" {
		q = q.Where("to_user_id = ?", toUserID)
	}

	var ratings []*models.Rating
	err := q.Order("timestamp DESC").Find(&ratings).Error
	return ratings, err
}
