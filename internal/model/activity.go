package model

import "time"

const (
	ActivityChatExchange = "chat.exchange"
	ActivityFileUploaded = "file.uploaded"
	ActivityFileDeleted  = "file.deleted"
)

// ActivityEvent is the payload published to the activity queue.
type ActivityEvent struct {
	Type       string    `json:"type"`
	UserID     uint      `json:"user_id,omitempty"`
	ProjectID  uint      `json:"project_id"`
	ResourceID uint      `json:"resource_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
