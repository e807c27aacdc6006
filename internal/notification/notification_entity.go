package notification

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID  uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Message string    `gorm:"column:message;type:text;not null"`
	// EventID dedupes at-least-once delivery from the broker.
	EventID   *uuid.UUID `gorm:"column:event_id;type:uuid;uniqueIndex"`
	Read      bool       `gorm:"column:read;not null;default:false"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
