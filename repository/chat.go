package repository

import (
	"context"
	"errors"

	"github.com/techieroshan/studentsupport/models"

	"gorm.io/gorm"
)

// ChatRepository defines the interface for chat thread and message operations
type ChatRepository interface {
	CreateThread(ctx context.Context, thread *models.ChatThread) error
	GetThreadByID(ctx context.Context, id string) (*models.ChatThread, error)
	// FindThread looks up the unique thread for a (listing, student, donor)
	// triple; returns (nil, nil) when none exists.
	FindThread(ctx context.Context, itemType models.ItemType, itemID, studentID, donorID string) (*models.ChatThread, error)
	FindThreadByItem(ctx context.Context, itemID string) (*models.ChatThread, error)
	GetThreadsForUser(ctx context.Context, userID string) ([]*models.ChatThread, error)
	UpdateThread(ctx context.Context, thread *models.ChatThread) error
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessages(ctx context.Context, threadID string) ([]*models.Message, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateThread(ctx context.Context, thread *models.ChatThread) error {
	return r.db.WithContext(ctx).Create(thread).Error
}

func (r *chatRepository) GetThreadByID(ctx context.Context, id string) (*models.ChatThread, error) {
	var thread models.ChatThread
	err := r.db.WithContext(ctx).First(&thread, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *chatRepository) FindThread(ctx context.Context, itemType models.ItemType, itemID, studentID, donorID string) (*models.ChatThread, error) {
	var thread models.ChatThread
	err := r.db.WithContext(ctx).
		Where("item_type = ? AND item_id = ? AND student_id = ? AND donor_id = ?",
			itemType, itemID, studentID, donorID).
		First(&thread).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *chatRepository) FindThreadByItem(ctx context.Context, itemID string) (*models.ChatThread, error) {
	var thread models.ChatThread
	err := r.db.WithContext(ctx).Where("item_id = ?", itemID).First(&thread).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *chatRepository) GetThreadsForUser(ctx context.Context, userID string) ([]*models.ChatThread, error) {
	var threads []*models.ChatThread
	err := r.db.WithContext(ctx).
		Where("student_id = ? OR donor_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&threads).Error
	return threads, err
}

func (r *chatRepository) UpdateThread(ctx context.Context, thread *models.ChatThread) error {
	return r.db.WithContext(ctx).Save(thread).Error
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *chatRepository) GetMessages(ctx context.Context, threadID string) ([]*models.Message, error) {
	var msgs []*models.Message
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("timestamp ASC").
		Find(&msgs).Error
	return msgs, err
}
