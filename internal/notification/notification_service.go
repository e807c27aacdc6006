package notification

import (
	"context"
	"errors"
	"time"

	"go-hrms/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrDuplicateEvent marks an already-materialized broker event; consumers
// treat it as success and commit the message.
var ErrDuplicateEvent = errors.New("notification event already processed")

type Service interface {
	Create(ctx context.Context, req CreateNotificationRequest) (NotificationResponse, error)
	GetAll(ctx context.Context, userID string) ([]NotificationResponse, error)
	MarkRead(ctx context.Context, userID, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateNotificationRequest) (NotificationResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return NotificationResponse{}, apperror.InvalidField("User Id")
	}

	n := &Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Message: req.Message,
	}
	if req.EventID != "" {
		eventID, err := uuid.Parse(req.EventID)
		if err != nil {
			return NotificationResponse{}, apperror.InvalidField("Event Id")
		}
		n.EventID = &eventID
	}

	if err := s.repo.Create(ctx, n); err != nil {
		if isUniqueEventViolation(err) {
			s.logger.Warn("notification event already materialized, skipping",
				zap.String("event_id", req.EventID),
			)
			return NotificationResponse{}, ErrDuplicateEvent
		}
		s.logger.Error("create notification persist failed", zap.Error(err))
		return NotificationResponse{}, err
	}

	s.logger.Info("notification created",
		zap.String("notification_id", n.ID.String()),
		zap.String("user_id", req.UserID),
	)
	return mapToResponse(*n), nil
}

func (s *service) GetAll(ctx context.Context, userID string) ([]NotificationResponse, error) {
	rows, err := s.repo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := make([]NotificationResponse, len(rows))
	for i, n := range rows {
		res[i] = mapToResponse(n)
	}
	return res, nil
}

func (s *service) MarkRead(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.InvalidField("Notification Id")
	}
	if err := s.repo.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	return nil
}

func isUniqueEventViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func mapToResponse(n Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID.String(),
		UserID:    n.UserID.String(),
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
	}
}
