package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"chatbot-platform/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListRecentByProjectID returns up to limit of the newest messages in
// chronological order.
func (r *MessageRepository) ListRecentByProjectID(ctx context.Context, projectID uint, limit int) ([]model.Message, error) {
	return r.ListPageByProjectID(ctx, projectID, limit, 0)
}

// ListPageByProjectID selects rows newest-first with offset/limit, then
// reverses them so the page reads oldest-first.
func (r *MessageRepository) ListPageByProjectID(ctx context.Context, projectID uint, limit, offset int) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) CountByProjectID(ctx context.Context, projectID uint) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Message{}).Where("project_id = ?", projectID).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count messages failed: %w", err)
	}
	return total, nil
}
