package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// LeaveType is immutable reference data loaded from the catalog table.
type LeaveType struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code          string    `gorm:"type:varchar(8);uniqueIndex;not null"`
	Name          string    `gorm:"type:varchar(100);not null"`
	AllowsHalfDay bool      `gorm:"not null;default:false"`
	Active        bool      `gorm:"not null;default:true"`
	CreatedAt     time.Time
}

func (LeaveType) TableName() string {
	return "leave_types"
}

// LeaveBalance is read-only for this service; approvals elsewhere mutate it.
type LeaveBalance struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Year        int       `gorm:"primaryKey"`
	Balance     float64   `gorm:"not null;default:0"`
	UpdatedAt   time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

type LeaveRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_user_created"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null"`
	FromDate    time.Time `gorm:"type:date;not null"`
	ToDate      time.Time `gorm:"type:date;not null"`
	HalfDay     bool      `gorm:"not null;default:false"`
	Reason      string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(20);not null;default:'PENDING'"`
	CreatedAt   time.Time `gorm:"index:idx_leave_requests_user_created"`
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	LeaveType   *LeaveType     `gorm:"foreignKey:LeaveTypeID;references:ID"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
