package model

import "time"

type Project struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	Description  *string   `gorm:"type:text" json:"description"`
	SystemPrompt *string   `gorm:"type:text" json:"system_prompt"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Messages []Message `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Files    []File    `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

// ProjectWithCounts is a project annotated with the size of its children.
type ProjectWithCounts struct {
	Project
	MessagesCount int64 `json:"messages_count"`
	FilesCount    int64 `json:"files_count"`
}
