package attendance

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Append(ctx context.Context, e *PunchEvent) error
	FindLastByUser(ctx context.Context, userID string) (*PunchEvent, error)
	FindByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]PunchEvent, error)
	FindAllByUser(ctx context.Context, userID string) ([]PunchEvent, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx binds the session to tx so the append participates in the caller's
// transaction instead of autocommitting on the pool.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	session := r.db.Session(&gorm.Session{Context: context.Background(), NewDB: true})
	session.Statement.ConnPool = tx
	return &repository{db: session}
}

func (r *repository) Append(ctx context.Context, e *PunchEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindLastByUser(ctx context.Context, userID string) (*PunchEvent, error) {
	var e PunchEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("punched_at DESC, seq DESC").
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindByUserBetween returns events with punched_at in [from, to), ascending.
func (r *repository) FindByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]PunchEvent, error) {
	var rows []PunchEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("punched_at >= ?", from).
		Where("punched_at < ?", to).
		Order("punched_at ASC, seq ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllByUser(ctx context.Context, userID string) ([]PunchEvent, error) {
	var rows []PunchEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("punched_at DESC, seq DESC").
		Find(&rows).Error
	return rows, err
}
