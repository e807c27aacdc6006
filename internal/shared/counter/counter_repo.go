package counter

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	GetNextValue(ctx context.Context, ownerID string, counterType string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// GetNextValue atomically increments and returns the per-owner counter.
// Used for the per-user punch sequence that breaks timestamp ties.
func (r *repository) GetNextValue(ctx context.Context, ownerID string, counterType string) (int64, error) {
	var nextValue int64

	// Raw SQL for atomic UPSERT and increment to handle races per owner/type
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO owner_counters (owner_id, counter_type, last_value, updated_at)
		VALUES (?, ?, 1, now())
		ON CONFLICT (owner_id, counter_type) DO UPDATE
		SET last_value = owner_counters.last_value + 1, updated_at = now()
		RETURNING last_value
	`, ownerID, counterType).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}
