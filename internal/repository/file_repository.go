package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"chatbot-platform/internal/model"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *model.File) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("create file failed: %w", err)
	}
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, id uint) (*model.File, error) {
	var file model.File
	if err := r.db.WithContext(ctx).First(&file, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get file failed: %w", err)
	}
	return &file, nil
}

func (r *FileRepository) ListByProjectID(ctx context.Context, projectID uint) ([]model.File, error) {
	var files []model.File
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").Order("id DESC").
		Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list files failed: %w", err)
	}
	return files, nil
}

func (r *FileRepository) CountByProjectID(ctx context.Context, projectID uint) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.File{}).Where("project_id = ?", projectID).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count files failed: %w", err)
	}
	return total, nil
}

func (r *FileRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.File{}, id).Error; err != nil {
		return fmt.Errorf("delete file failed: %w", err)
	}
	return nil
}
