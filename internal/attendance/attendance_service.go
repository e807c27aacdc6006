package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	attendanceerrors "go-hrms/internal/attendance/errors"
	"go-hrms/internal/geolocation"
	"go-hrms/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	punchLockPrefix = "attendance:punch:lock:"
	punchLockTTL    = 10 * time.Second
	punchCounter    = "punch"
)

type Service interface {
	GetState(ctx context.Context, userID string) (StateResponse, error)
	Punch(ctx context.Context, userID string, req PunchRequest) (StateResponse, error)
	Aggregate(ctx context.Context, userID string, from, to time.Time) ([]DayRecordResponse, error)
	History(ctx context.Context, userID string) ([]PunchEventResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	counter  counter.Repository
	resolver geolocation.Resolver
	rdb      *redis.Client
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	resolver geolocation.Resolver,
	rdb *redis.Client,
	reportingTZ *time.Location,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithClock(db, repo, counterRepo, resolver, rdb, reportingTZ, time.Now, logger...)
}

// NewServiceWithClock injects the clock so live elapsed time and punch
// timestamps are deterministic under test.
func NewServiceWithClock(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	resolver geolocation.Resolver,
	rdb *redis.Client,
	reportingTZ *time.Location,
	now func() time.Time,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	if reportingTZ == nil {
		reportingTZ = time.UTC
	}
	if resolver == nil {
		resolver = geolocation.NopResolver{}
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		db:       db,
		repo:     repo,
		counter:  counterRepo,
		resolver: resolver,
		rdb:      rdb,
		loc:      reportingTZ,
		now:      now,
		logger:   l,
	}
}

func (s *service) GetState(ctx context.Context, userID string) (StateResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return StateResponse{}, attendanceerrors.ErrInvalidUserID
	}

	last, err := s.repo.FindLastByUser(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("get state read last event failed", zap.Error(err))
		return StateResponse{}, err
	}

	return s.mapState(DeriveState(last)), nil
}

func (s *service) Punch(ctx context.Context, userID string, req PunchRequest) (StateResponse, error) {
	s.logger.Debug("punch requested",
		zap.String("user_id", userID),
		zap.String("type", req.Type),
	)

	if _, err := uuid.Parse(userID); err != nil {
		return StateResponse{}, attendanceerrors.ErrInvalidUserID
	}
	if req.Type != PunchIn && req.Type != PunchOut {
		return StateResponse{}, attendanceerrors.ErrInvalidPunchType
	}
	if req.Latitude == nil || req.Longitude == nil ||
		*req.Latitude < -90 || *req.Latitude > 90 ||
		*req.Longitude < -180 || *req.Longitude > 180 {
		return StateResponse{}, attendanceerrors.ErrInvalidCoordinates
	}

	// Serialize the read-validate-append sequence per user so two concurrent
	// punches cannot both observe OUT and open two sessions.
	unlock, err := s.acquirePunchLock(ctx, userID)
	if err != nil {
		return StateResponse{}, err
	}
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("punch begin tx failed", zap.Error(err))
		return StateResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	last, err := qtx.FindLastByUser(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("punch read last event failed", zap.Error(err))
		return StateResponse{}, err
	}

	state := DeriveState(last)
	if err := state.CanPunch(req.Type); err != nil {
		s.logger.Warn("punch rejected",
			zap.String("user_id", userID),
			zap.String("current_status", state.Status),
			zap.String("type", req.Type),
		)
		return StateResponse{}, err
	}

	// Best effort only. A dead reverse-geocode upstream must never block a
	// punch; the event is recorded with a null location instead.
	locationName := s.resolveLocation(ctx, *req.Latitude, *req.Longitude)

	seq, err := s.counter.GetNextValue(ctx, userID, punchCounter)
	if err != nil {
		s.logger.Error("punch sequence failed", zap.Error(err))
		return StateResponse{}, err
	}

	event := &PunchEvent{
		ID:           uuid.New(),
		UserID:       uuid.MustParse(userID),
		Seq:          seq,
		PunchType:    req.Type,
		PunchedAt:    s.now().UTC(),
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		LocationName: locationName,
	}

	if err := qtx.Append(ctx, event); err != nil {
		// The alternation trigger raises unique_violation when another
		// writer slipped past the lock.
		if isOpenSessionViolation(err) {
			if req.Type == PunchIn {
				return StateResponse{}, attendanceerrors.ErrAlreadyPunchedIn
			}
			return StateResponse{}, attendanceerrors.ErrAlreadyPunchedOut
		}
		s.logger.Error("punch append failed", zap.Error(err))
		return StateResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("punch commit failed", zap.Error(err))
		return StateResponse{}, err
	}

	s.logger.Info("punch recorded",
		zap.String("user_id", userID),
		zap.String("type", req.Type),
		zap.Int64("seq", seq),
		zap.Bool("location_resolved", locationName != nil),
	)

	return s.mapState(DeriveState(event)), nil
}

func (s *service) Aggregate(ctx context.Context, userID string, from, to time.Time) ([]DayRecordResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, attendanceerrors.ErrInvalidUserID
	}
	if !from.Before(to) {
		return nil, attendanceerrors.ErrInvalidPeriod
	}

	events, err := s.repo.FindByUserBetween(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("aggregate read ledger failed", zap.Error(err))
		return nil, err
	}

	records := FoldDayRecords(events, s.loc)
	res := make([]DayRecordResponse, len(records))
	for i, rec := range records {
		res[i] = mapDayRecord(rec)
	}
	return res, nil
}

func (s *service) History(ctx context.Context, userID string) ([]PunchEventResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, attendanceerrors.ErrInvalidUserID
	}

	events, err := s.repo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := make([]PunchEventResponse, len(events))
	for i := range events {
		res[i] = mapEvent(events[i])
	}
	return res, nil
}

func (s *service) acquirePunchLock(ctx context.Context, userID string) (func(), error) {
	if s.rdb == nil {
		return func() {}, nil
	}

	key := punchLockPrefix + userID
	ok, err := s.rdb.SetNX(ctx, key, "locked", punchLockTTL).Result()
	if err != nil {
		s.logger.Error("punch lock acquire failed", zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, attendanceerrors.ErrPunchInProgress
	}
	return func() {
		if err := s.rdb.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
			s.logger.Warn("punch lock release failed", zap.Error(err))
		}
	}, nil
}

func (s *service) resolveLocation(ctx context.Context, lat, lng float64) *string {
	label, err := s.resolver.Resolve(ctx, lat, lng)
	if err != nil {
		s.logger.Warn("location resolution failed, recording null location",
			zap.Float64("latitude", lat),
			zap.Float64("longitude", lng),
			zap.Error(err),
		)
		return nil
	}
	return &label
}

func isOpenSessionViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (s *service) mapState(state State) StateResponse {
	resp := StateResponse{Status: state.Status}
	if state.LastEvent != nil {
		e := mapEvent(*state.LastEvent)
		resp.LastPunch = &e
	}
	if state.SessionStart != nil {
		v := state.SessionStart.UTC().Format(time.RFC3339)
		resp.SessionStart = &v
		resp.LiveElapsedSeconds = int64(state.LiveElapsed(s.now().UTC()).Seconds())
	}
	return resp
}

func mapEvent(e PunchEvent) PunchEventResponse {
	return PunchEventResponse{
		ID:        e.ID.String(),
		Type:      e.PunchType,
		PunchedAt: e.PunchedAt.UTC().Format(time.RFC3339),
		Latitude:  e.Latitude,
		Longitude: e.Longitude,
		Location:  e.LocationName,
	}
}

func mapDayRecord(rec DayRecord) DayRecordResponse {
	resp := DayRecordResponse{
		Date:     rec.Date,
		Location: rec.Location,
	}
	if rec.FirstIn != nil {
		v := rec.FirstIn.Format(time.RFC3339)
		resp.FirstIn = &v
	}
	if rec.LastOut != nil {
		v := rec.LastOut.Format(time.RFC3339)
		resp.LastOut = &v
	}
	if rec.WorkedDuration != nil {
		v := int64(rec.WorkedDuration.Seconds())
		resp.WorkedSeconds = &v
	}
	return resp
}
