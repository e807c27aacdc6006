package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-hrms/internal/events"
	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	typesCacheKey = "leave:types:active"
	typesCacheTTL = time.Hour
)

type Service interface {
	Apply(ctx context.Context, userID string, req ApplyLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, userID string) ([]LeaveResponse, error)
	GetBalance(ctx context.Context, userID, leaveTypeID string, year int) (BalanceResponse, error)
	ListTypes(ctx context.Context, userID string) ([]LeaveTypeResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
	rules  Rules
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rules Rules, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, nil, rules, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	rules Rules,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		rules:  rules,
		now:    time.Now,
		logger: l,
	}
}

// Apply runs the admission chain in a fixed order; the first failure wins and
// nothing is persisted. On success the PENDING request and its notification
// outbox event are committed in one transaction.
func (s *service) Apply(ctx context.Context, userID string, req ApplyLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("apply leave requested",
		zap.String("request_id", rid),
		zap.String("user_id", userID),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.String("from_date", req.FromDate),
		zap.String("to_date", req.ToDate),
		zap.Bool("half_day", req.HalfDay),
	)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidUserID
	}

	// 1. Required fields
	if req.LeaveTypeID == "" || req.FromDate == "" || req.ToDate == "" {
		return LeaveResponse{}, leaveerrors.ErrMissingFields
	}

	fromDate, err := parseDate(req.FromDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	toDate, err := parseDate(req.ToDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	// 2. Date ordering
	if fromDate.After(toDate) {
		return LeaveResponse{}, leaveerrors.ErrInvalidRange
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("apply leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// 3. Active type
	leaveType, err := qtx.FindActiveTypeByID(ctx, req.LeaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrUnknownType
		}
		s.logger.Error("apply leave type lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	// 4. Single-day-only codes span exactly one date
	if s.rules.IsSingleDayOnly(leaveType.Code) && !fromDate.Equal(toDate) {
		return LeaveResponse{}, leaveerrors.ErrSingleDayOnly
	}

	// 5. Half-day permitted by the type
	if req.HalfDay && !leaveType.AllowsHalfDay {
		return LeaveResponse{}, leaveerrors.ErrHalfDayNotAllowed
	}

	// 6. Half-day spans exactly one date
	if req.HalfDay && !fromDate.Equal(toDate) {
		return LeaveResponse{}, leaveerrors.ErrHalfDaySingleDate
	}

	// 7. Balance gate. The balance is only read here; decrementing belongs
	// to the approval workflow.
	if s.rules.IsBalanceGated(leaveType.Code) {
		balance, err := s.lookupBalance(ctx, qtx, userID, req.LeaveTypeID, s.now().UTC().Year())
		if err != nil {
			return LeaveResponse{}, err
		}
		if balance <= 0 {
			s.logger.Warn("apply leave insufficient balance",
				zap.String("user_id", userID),
				zap.String("leave_type_code", leaveType.Code),
				zap.Float64("balance", balance),
			)
			return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
		}
	}

	// 8. Admit
	l := &LeaveRequest{
		ID:          uuid.New(),
		UserID:      userUUID,
		LeaveTypeID: leaveType.ID,
		FromDate:    fromDate,
		ToDate:      toDate,
		HalfDay:     req.HalfDay,
		Reason:      req.Reason,
		Status:      StatusPending,
	}

	if err := qtx.Insert(ctx, l); err != nil {
		s.logger.Error("apply leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if s.outbox != nil {
		event := events.LeaveRequestedEvent{
			EventType:     "leave_requested",
			RequestID:     rid,
			LeaveID:       l.ID.String(),
			UserID:        userID,
			LeaveTypeCode: leaveType.Code,
			FromDate:      req.FromDate,
			ToDate:        req.ToDate,
			OccurredAt:    s.now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal leave_requested event failed", zap.Error(err))
			return LeaveResponse{}, err
		}

		outboxRepo := s.outbox.WithTx(tx)
		if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "leave_request",
			AggregateID:   l.ID.String(),
			EventType:     event.EventType,
			Topic:         events.LeaveRequestedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("apply leave outbox persist failed",
				zap.String("leave_id", l.ID.String()),
				zap.Error(err),
			)
			return LeaveResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("apply leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("apply leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.String("user_id", userID),
		zap.String("leave_type_code", leaveType.Code),
	)

	l.LeaveType = leaveType
	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context, userID string) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, leaveerrors.ErrInvalidUserID
	}

	leaves, err := s.repo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

// GetBalance returns the stored balance, or 0 when no row exists; a missing
// row means no entitlement is configured, not an error.
func (s *service) GetBalance(ctx context.Context, userID, leaveTypeID string, year int) (BalanceResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return BalanceResponse{}, leaveerrors.ErrInvalidUserID
	}
	if _, err := uuid.Parse(leaveTypeID); err != nil {
		return BalanceResponse{}, leaveerrors.ErrUnknownType
	}
	if year == 0 {
		year = s.now().UTC().Year()
	}

	balance, err := s.lookupBalance(ctx, s.repo, userID, leaveTypeID, year)
	if err != nil {
		return BalanceResponse{}, err
	}

	return BalanceResponse{
		UserID:      userID,
		LeaveTypeID: leaveTypeID,
		Year:        year,
		Balance:     balance,
	}, nil
}

// ListTypes returns the active catalog with the caller's current-year balance
// per type. The catalog itself is reference data and cached; balances are
// read fresh on every call.
func (s *service) ListTypes(ctx context.Context, userID string) ([]LeaveTypeResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, leaveerrors.ErrInvalidUserID
	}

	types, err := s.loadActiveTypes(ctx)
	if err != nil {
		return nil, err
	}

	year := s.now().UTC().Year()
	res := make([]LeaveTypeResponse, len(types))
	for i, t := range types {
		balance, err := s.lookupBalance(ctx, s.repo, userID, t.ID.String(), year)
		if err != nil {
			return nil, err
		}
		res[i] = LeaveTypeResponse{
			ID:            t.ID.String(),
			Code:          t.Code,
			Name:          t.Name,
			AllowsHalfDay: t.AllowsHalfDay,
			Balance:       balance,
		}
	}
	return res, nil
}

func (s *service) loadActiveTypes(ctx context.Context) ([]LeaveType, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, typesCacheKey).Result(); err == nil {
			var types []LeaveType
			if json.Unmarshal([]byte(cached), &types) == nil {
				return types, nil
			}
		}
	}

	v, err, _ := s.sf.Do(typesCacheKey, func() (interface{}, error) {
		types, err := s.repo.FindActiveTypes(ctx)
		if err != nil {
			return nil, err
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(types); err == nil {
				s.rdb.Set(ctx, typesCacheKey, jsonData, typesCacheTTL)
			}
		}

		return types, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]LeaveType), nil
}

func (s *service) lookupBalance(ctx context.Context, repo Repository, userID, leaveTypeID string, year int) (float64, error) {
	b, err := repo.FindBalance(ctx, userID, leaveTypeID, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		s.logger.Error("balance lookup failed", zap.Error(err))
		return 0, err
	}
	return b.Balance, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:          l.ID.String(),
		UserID:      l.UserID.String(),
		LeaveTypeID: l.LeaveTypeID.String(),
		FromDate:    l.FromDate.Format("2006-01-02"),
		ToDate:      l.ToDate.Format("2006-01-02"),
		HalfDay:     l.HalfDay,
		Reason:      l.Reason,
		Status:      l.Status,
		CreatedAt:   l.CreatedAt.UTC().Format(time.RFC3339),
	}
	if l.LeaveType != nil {
		resp.LeaveTypeCode = l.LeaveType.Code
		resp.LeaveTypeName = l.LeaveType.Name
	}
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
