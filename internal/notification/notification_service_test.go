package notification

import (
	"context"
	"database/sql"
	"testing"

	"go-hrms/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn        func(ctx context.Context, n *Notification) error
	findAllByUserFn func(ctx context.Context, userID string) ([]Notification, error)
	markReadFn      func(ctx context.Context, userID, id string) error
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }
func (f *fakeRepo) Create(ctx context.Context, n *Notification) error {
	return f.createFn(ctx, n)
}
func (f *fakeRepo) FindAllByUser(ctx context.Context, userID string) ([]Notification, error) {
	return f.findAllByUserFn(ctx, userID)
}
func (f *fakeRepo) MarkRead(ctx context.Context, userID, id string) error {
	return f.markReadFn(ctx, userID, id)
}

func TestService_Create(t *testing.T) {
	var saved *Notification
	repo := &fakeRepo{
		createFn: func(ctx context.Context, n *Notification) error {
			saved = n
			return nil
		},
	}
	svc := NewService(repo)

	eventID := uuid.New().String()
	resp, err := svc.Create(context.Background(), CreateNotificationRequest{
		UserID:  uuid.New().String(),
		Message: "Leave request sent to your Reporting Manager for approval",
		EventID: eventID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.False(t, resp.Read)

	require.NotNil(t, saved)
	require.NotNil(t, saved.EventID)
	assert.Equal(t, eventID, saved.EventID.String())
}

func TestService_Create_DuplicateEvent(t *testing.T) {
	repo := &fakeRepo{
		createFn: func(ctx context.Context, n *Notification) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "notifications_event_id_key"}
		},
	}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateNotificationRequest{
		UserID:  uuid.New().String(),
		Message: "dup",
		EventID: uuid.New().String(),
	})
	assert.ErrorIs(t, err, ErrDuplicateEvent)
}

func TestService_Create_InvalidIDs(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.Create(context.Background(), CreateNotificationRequest{UserID: "nope", Message: "m"})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), CreateNotificationRequest{
		UserID: uuid.New().String(), Message: "m", EventID: "nope",
	})
	assert.Error(t, err)
}

func TestService_MarkRead_NotFound(t *testing.T) {
	repo := &fakeRepo{
		markReadFn: func(ctx context.Context, userID, id string) error {
			return gorm.ErrRecordNotFound
		},
	}
	svc := NewService(repo)

	err := svc.MarkRead(context.Background(), uuid.New().String(), uuid.New().String())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
