package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"chatbot-platform/internal/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("create project failed: %w", err)
	}
	return nil
}

func (r *ProjectRepository) GetByIDAndUserID(ctx context.Context, projectID, userID uint) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", projectID, userID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project failed: %w", err)
	}
	return &project, nil
}

func (r *ProjectRepository) ListByUserID(ctx context.Context, userID uint) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects failed: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Project{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count projects failed: %w", err)
	}
	return total, nil
}

// Save writes name, description and system prompt back, always including nil values.
func (r *ProjectRepository) Save(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Model(project).
		Select("name", "description", "system_prompt", "updated_at").
		Updates(project).Error; err != nil {
		return fmt.Errorf("update project failed: %w", err)
	}
	return nil
}

// Delete removes the project together with its messages and file rows and
// returns the file rows that were removed.
func (r *ProjectRepository) Delete(ctx context.Context, projectID uint) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Find(&files).Error; err != nil {
			return fmt.Errorf("list project files failed: %w", err)
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&model.Message{}).Error; err != nil {
			return fmt.Errorf("delete project messages failed: %w", err)
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&model.File{}).Error; err != nil {
			return fmt.Errorf("delete project files failed: %w", err)
		}
		if err := tx.Delete(&model.Project{}, projectID).Error; err != nil {
			return fmt.Errorf("delete project failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

type projectCount struct {
	ProjectID uint
	Total     int64
}

// ChildCounts returns message and file counts keyed by project id. Missing
// keys mean zero.
func (r *ProjectRepository) ChildCounts(ctx context.Context, projectIDs []uint) (map[uint]int64, map[uint]int64, error) {
	messages := make(map[uint]int64, len(projectIDs))
	files := make(map[uint]int64, len(projectIDs))
	if len(projectIDs) == 0 {
		return messages, files, nil
	}

	var rows []projectCount
	if err := r.db.WithContext(ctx).Model(&model.Message{}).
		Select("project_id, COUNT(*) AS total").
		Where("project_id IN ?", projectIDs).
		Group("project_id").
		Scan(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("count project messages failed: %w", err)
	}
	for _, row := range rows {
		messages[row.ProjectID] = row.Total
	}

	rows = rows[:0]
	if err := r.db.WithContext(ctx).Model(&model.File{}).
		Select("project_id, COUNT(*) AS total").
		Where("project_id IN ?", projectIDs).
		Group("project_id").
		Scan(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("count project files failed: %w", err)
	}
	for _, row := range rows {
		files[row.ProjectID] = row.Total
	}
	return messages, files, nil
}
