package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent is an append-only record of a provider callback
type WebhookEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Provider  string         `gorm:"not null;index" json:"provider"`
	EventID   string         `gorm:"uniqueIndex;not null" json:"eventId"`
	Type      string         `gorm:"index" json:"type"`
	Payload   datatypes.JSON `json:"payload"`
	Processed bool           `gorm:"not null;default:false" json:"processed"`
	CreatedAt time.Time      `json:"createdAt"`
}

// TableName specifies the table name for the WebhookEvent model
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
