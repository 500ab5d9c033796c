package repository

import (
	"context"
	"errors"
	"time"

	"github.com/techieroshan/studentsupport/models"

	"gorm.io/gorm"
)

// VerificationRepository defines the interface for one-time code operations
type VerificationRepository interface {
	Create(ctx context.Context, code *models.VerificationCode) error
	// FindValid returns an unused, unexpired code matching (user, code, type),
	// or (nil, nil) when none exists.
	FindValid(ctx context.Context, userID, code, codeType string, now time.Time) (*models.VerificationCode, error)
	MarkUsed(ctx context.Context, id string) error
}

type verificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository creates a new verification code repository
func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) Create(ctx context.Context, code *models.VerificationCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *verificationRepository) FindValid(ctx context.Context, userID, code, codeType string, now time.Time) (*models.VerificationCode, error) {
	var vc models.VerificationCode
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND code = ? AND code_type = ? AND is_used = ? AND expires_at > ?",
			userID, code, codeType, false, now).
		First(&vc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vc, nil
}

func (r *verificationRepository) MarkUsed(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("id = ?", id).
		Update("is_used", true).Error
}
