package repository

import (
	"context"
	"errors"

	"github.com/techieroshan/studentsupport/models"

	"gorm.io/gorm"
)

// FlagRepository defines the interface for moderation flag operations
type FlagRepository interface {
	Create(ctx context.Context, flag *models.FlaggedContent) error
	GetByID(ctx context.Context, id string) (*models.FlaggedContent, error)
	// FindActive returns the undismissed flag a user holds on an item, or
	// (nil, nil) when none exists.
	FindActive(ctx context.Context, itemID, flaggedBy string) (*models.FlaggedContent, error)
	ListActive(ctx context.Context) ([]*models.FlaggedContent, error)
	Update(ctx context.Context, flag *models.FlaggedContent) error
	Delete(ctx context.Context, id string) error
}

type flagRepository struct {
	db *gorm.DB
}

// NewFlagRepository creates a new flag repository
func NewFlagRepository(db *gorm.DB) FlagRepository {
	return &flagRepository{db: db}
}

func (r *flagRepository) Create(ctx context.Context, flag *models.FlaggedContent) error {
	return r.db.WithContext(ctx).Create(flag).Error
}

func (r *flagRepository) GetByID(ctx context.Context, id string) (*models.FlaggedContent, error) {
	var flag models.FlaggedContent
	err := r.db.WithContext(ctx).First(&flag, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &flag, nil
}

func (r *flagRepository) FindActive(ctx context.Context, itemID, flaggedBy string) (*models.FlaggedContent, error) {
	var flag models.FlaggedContent
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND flagged_by = ? AND dismissed = ?", itemID, flaggedBy, false).
		First(&flag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &flag, nil
}

func (r *flagRepository) ListActive(ctx context.Context) ([]*models.FlaggedContent, error) {
	var flags []*models.FlaggedContent
	err := r.db.WithContext(ctx).
		Where("dismissed = ?", false).
		Order("timestamp DESC").
		Find(&flags).Error
	return flags, err
}

func (r *flagRepository) Update(ctx context.Context, flag *models.FlaggedContent) error {
	return r.db.WithContext(ctx).Save(flag).Error
}

func (r *flagRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.FlaggedContent{}, "id = ?", id).Error
}
