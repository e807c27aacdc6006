package attendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	PunchIn  = "IN"
	PunchOut = "OUT"
)

// PunchEvent is an append-only ledger row. Rows are never updated or deleted;
// all attendance state is derived from the sequence of events.
type PunchEvent struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_attendance_logs_user_punched"`
	// Seq is a per-user monotonic sequence; it breaks ordering ties between
	// events with equal timestamps.
	Seq          int64     `gorm:"column:seq;not null"`
	PunchType    string    `gorm:"column:punch_type;type:varchar(3);not null"`
	PunchedAt    time.Time `gorm:"column:punched_at;type:timestamptz;not null;index:idx_attendance_logs_user_punched"`
	Latitude     float64   `gorm:"column:latitude;not null"`
	Longitude    float64   `gorm:"column:longitude;not null"`
	LocationName *string   `gorm:"column:location_name;type:varchar(255)"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (PunchEvent) TableName() string {
	return "attendance_logs"
}
