package model

import "time"

type File struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProjectID      uint      `gorm:"not null;index" json:"project_id"`
	Filename       string    `gorm:"size:255;not null;uniqueIndex" json:"filename"`
	OriginalName   string    `gorm:"size:255;not null" json:"original_name"`
	ContentType    string    `gorm:"size:128" json:"content_type"`
	Size           int64     `json:"size"`
	ProviderFileID *string   `gorm:"size:128" json:"openai_file_id"`
	CreatedAt      time.Time `json:"created_at"`
}
