package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"go-hrms/internal/events"
	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepo struct {
	withTxFn             func(tx *sql.Tx) Repository
	findActiveTypesFn    func(ctx context.Context) ([]LeaveType, error)
	findActiveTypeByIDFn func(ctx context.Context, id string) (*LeaveType, error)
	findBalanceFn        func(ctx context.Context, userID, leaveTypeID string, year int) (*LeaveBalance, error)
	insertFn             func(ctx context.Context, l *LeaveRequest) error
	findAllByUserFn      func(ctx context.Context, userID string) ([]LeaveRequest, error)
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f.withTxFn(tx) }
func (f *fakeRepo) FindActiveTypes(ctx context.Context) ([]LeaveType, error) {
	return f.findActiveTypesFn(ctx)
}
func (f *fakeRepo) FindActiveTypeByID(ctx context.Context, id string) (*LeaveType, error) {
	return f.findActiveTypeByIDFn(ctx, id)
}
func (f *fakeRepo) FindBalance(ctx context.Context, userID, leaveTypeID string, year int) (*LeaveBalance, error) {
	return f.findBalanceFn(ctx, userID, leaveTypeID, year)
}
func (f *fakeRepo) Insert(ctx context.Context, l *LeaveRequest) error {
	return f.insertFn(ctx, l)
}
func (f *fakeRepo) FindAllByUser(ctx context.Context, userID string) ([]LeaveRequest, error) {
	return f.findAllByUserFn(ctx, userID)
}

type fakeOutbox struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error             { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, r string) error { return nil }

func testRules() Rules {
	return NewRules([]string{"CL", "EL", "CO", "SOL"}, []string{"SOL"})
}

func newTypeRepo(leaveType *LeaveType, balance float64) *fakeRepo {
	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.findActiveTypeByIDFn = func(ctx context.Context, id string) (*LeaveType, error) {
		if leaveType == nil || leaveType.ID.String() != id {
			return nil, gorm.ErrRecordNotFound
		}
		return leaveType, nil
	}
	repo.findBalanceFn = func(ctx context.Context, userID, leaveTypeID string, year int) (*LeaveBalance, error) {
		if balance < 0 {
			return nil, gorm.ErrRecordNotFound
		}
		return &LeaveBalance{Balance: balance}, nil
	}
	repo.insertFn = func(ctx context.Context, l *LeaveRequest) error { return nil }
	return repo
}

func TestService_Apply_CreatesPendingRequestAndOutboxEvent(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	userID := uuid.New().String()
	casualLeave := &LeaveType{ID: uuid.New(), Code: "CL", Name: "Casual Leave", AllowsHalfDay: true, Active: true}

	var inserted *LeaveRequest
	repo := newTypeRepo(casualLeave, 5)
	repo.insertFn = func(ctx context.Context, l *LeaveRequest) error {
		inserted = l
		return nil
	}
	outbox := &fakeOutbox{}

	svc := NewServiceWithOutbox(db, repo, outbox, nil, testRules())

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Apply(context.Background(), userID, ApplyLeaveRequest{
		LeaveTypeID: casualLeave.ID.String(),
		FromDate:    "2026-09-10",
		ToDate:      "2026-09-12",
		Reason:      "family event",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, resp.Status)
	assert.Equal(t, "CL", resp.LeaveTypeCode)
	assert.Equal(t, "2026-09-10", resp.FromDate)
	assert.Equal(t, "2026-09-12", resp.ToDate)

	require.NotNil(t, inserted)
	assert.Equal(t, StatusPending, inserted.Status)

	require.Len(t, outbox.created, 1)
	out := outbox.created[0]
	assert.Equal(t, events.LeaveRequestedTopic, out.Topic)
	assert.Equal(t, kafka.OutboxStatusPending, out.Status)
	assert.Equal(t, inserted.ID.String(), out.AggregateID)

	var event events.LeaveRequestedEvent
	require.NoError(t, json.Unmarshal(out.Payload, &event))
	assert.Equal(t, "leave_requested", event.EventType)
	assert.Equal(t, userID, event.UserID)
	assert.Equal(t, "CL", event.LeaveTypeCode)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Apply_MissingFields(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := NewService(db, &fakeRepo{}, testRules())

	_, err := svc.Apply(context.Background(), uuid.New().String(), ApplyLeaveRequest{
		FromDate: "2026-09-10",
		ToDate:   "2026-09-10",
	})
	assert.ErrorIs(t, err, leaveerrors.ErrMissingFields)
}

func TestService_Apply_BadDates(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	svc := NewService(db, &fakeRepo{}, testRules())
	typeID := uuid.New().String()

	_, err := svc.Apply(context.Background(), uuid.New().String(), ApplyLeaveRequest{
		LeaveTypeID: typeID, FromDate: "10-09-2026", ToDate: "2026-09-10",
	})
	assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)

	_, err = svc.Apply(context.Background(), uuid.New().String(), ApplyLeaveRequest{
		LeaveTypeID: typeID, FromDate: "2026-09-12", ToDate: "2026-09-10",
	})
	assert.ErrorIs(t, err, leaveerrors.ErrInvalidRange)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Apply_UnknownOrInactiveType(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	repo := newTypeRepo(nil, 5)
	svc := NewService(db, repo, testRules())

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Apply(context.Background(), uuid.New().String(), ApplyLeaveRequest{
		LeaveTypeID: uuid.New().String(), FromDate: "2026-09-10", ToDate: "2026-09-10",
	})
	assert.ErrorIs(t, err, leaveerrors.ErrUnknownType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Apply_SingleDayOnlyType(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	sol := &LeaveType{ID: uuid.New(), Code: "SOL", Name: "Special Occasion Leave", Active: true}
	svc := NewService(db, newTypeRepo(sol, 2), testRules())

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Apply(context.Background(), uuid.New().String(), ApplyLeaveRequest{
		LeaveTypeID: sol.ID.String(), FromDate: "2026-09-10", ToDate: "2026-09-11",
	})
	assert.ErrorIs(t, err, leaveerrors.ErrSingleDayOnly)

	// The same code on a single date is admitted.
	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Apply(context.Background(), uuid.New().String(), ApplyLeaveRequest{
		LeaveTypeID: sol.ID.String(), FromDate: "2026-09-10", ToDate: "2026-09-10",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, resp.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Apply_HalfDayRules(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	noHalf := &LeaveType{ID: uuid.New(), Code: "EL", Name: "Earned Leave", AllowsHalfDay: false, Active: true}
	svc := NewService(db, newTypeRepo(noHalf, 10), testRules())

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Apply(context.Background(), uuid.New().String(), ApplyLeaveRequest{
		LeaveTypeID: noHalf.ID.String(), FromDate: "2026-09-10", ToDate: "2026-09-10", HalfDay: true,
	})
	assert.ErrorIs(t, err, leaveerrors.ErrHalfDayNotAllowed)

	withHalf := &LeaveType{ID: uuid.New(), Code: "CL", Name: "Casual Leave", AllowsHalfDay: true, Active: true}
	svc = NewService(db, newTypeRepo(withHalf, 10), testRules())

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.Apply(context.Background(), uuid.New().String(), ApplyLeaveRequest{
		LeaveTypeID: withHalf.ID.String(), FromDate: "2026-09-10", ToDate: "2026-09-11", HalfDay: true,
	})
	assert.ErrorIs(t, err, leaveerrors.ErrHalfDaySingleDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Apply_BalanceGate(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	casualLeave := &LeaveType{ID: uuid.New(), Code: "CL", Name: "Casual Leave", Active: true}

	// Zero balance rejects.
	svc := NewService(db, newTypeRepo(casualLeave, 0), testRules())
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Apply(context.Background(), uuid.New().String(), ApplyLeaveRequest{
		LeaveTypeID: casualLeave.ID.String(), FromDate: "2026-09-10", ToDate: "2026-09-10",
	})
	assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)

	// A missing balance row counts as zero.
	svc = NewService(db, newTypeRepo(casualLeave, -1), testRules())
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.Apply(context.Background(), uuid.New().String(), ApplyLeaveRequest{
		LeaveTypeID: casualLeave.ID.String(), FromDate: "2026-09-10", ToDate: "2026-09-10",
	})
	assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)

	// Ungated types skip the balance read entirely.
	unpaid := &LeaveType{ID: uuid.New(), Code: "LWP", Name: "Leave Without Pay", Active: true}
	repo := newTypeRepo(unpaid, -1)
	repo.findBalanceFn = func(ctx context.Context, userID, leaveTypeID string, year int) (*LeaveBalance, error) {
		t.Fatal("balance must not be read for an ungated type")
		return nil, nil
	}
	svc = NewService(db, repo, testRules())
	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Apply(context.Background(), uuid.New().String(), ApplyLeaveRequest{
		LeaveTypeID: unpaid.ID.String(), FromDate: "2026-09-10", ToDate: "2026-09-10",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, resp.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Apply_BalanceIsNotDecremented(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	casualLeave := &LeaveType{ID: uuid.New(), Code: "CL", Name: "Casual Leave", Active: true}
	repo := newTypeRepo(casualLeave, 3)

	var inserted *LeaveRequest
	repo.insertFn = func(ctx context.Context, l *LeaveRequest) error {
		inserted = l
		return nil
	}

	svc := NewService(db, repo, testRules())

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err := svc.Apply(context.Background(), uuid.New().String(), ApplyLeaveRequest{
		LeaveTypeID: casualLeave.ID.String(), FromDate: "2026-09-10", ToDate: "2026-09-10",
	})
	require.NoError(t, err)
	require.NotNil(t, inserted)

	// A second application against the same balance still passes: the gate
	// only requires a positive balance, the deduction happens at approval.
	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err = svc.Apply(context.Background(), uuid.New().String(), ApplyLeaveRequest{
		LeaveTypeID: casualLeave.ID.String(), FromDate: "2026-09-11", ToDate: "2026-09-11",
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetBalance_MissingRowIsZero(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	repo := &fakeRepo{
		findBalanceFn: func(ctx context.Context, userID, leaveTypeID string, year int) (*LeaveBalance, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewService(db, repo, testRules())

	resp, err := svc.GetBalance(context.Background(), uuid.New().String(), uuid.New().String(), 2026)
	require.NoError(t, err)
	assert.Equal(t, float64(0), resp.Balance)
	assert.Equal(t, 2026, resp.Year)
}

func TestService_ListTypes_IncludesPerUserBalance(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	clID := uuid.New()
	elID := uuid.New()
	repo := &fakeRepo{
		findActiveTypesFn: func(ctx context.Context) ([]LeaveType, error) {
			return []LeaveType{
				{ID: clID, Code: "CL", Name: "Casual Leave", AllowsHalfDay: true, Active: true},
				{ID: elID, Code: "EL", Name: "Earned Leave", Active: true},
			}, nil
		},
		findBalanceFn: func(ctx context.Context, userID, leaveTypeID string, year int) (*LeaveBalance, error) {
			if leaveTypeID == clID.String() {
				return &LeaveBalance{Balance: 4}, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewService(db, repo, testRules())

	types, err := svc.ListTypes(context.Background(), uuid.New().String())
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, float64(4), types[0].Balance)
	assert.Equal(t, float64(0), types[1].Balance)
	assert.True(t, types[0].AllowsHalfDay)
}

func TestService_GetAll_MapsTypeDetails(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	userID := uuid.New()
	repo := &fakeRepo{
		findAllByUserFn: func(ctx context.Context, uid string) ([]LeaveRequest, error) {
			return []LeaveRequest{{
				ID:          uuid.New(),
				UserID:      userID,
				LeaveTypeID: uuid.New(),
				FromDate:    time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
				ToDate:      time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
				Status:      StatusPending,
				LeaveType:   &LeaveType{Code: "CL", Name: "Casual Leave"},
			}}, nil
		},
	}
	svc := NewService(db, repo, testRules())

	leaves, err := svc.GetAll(context.Background(), userID.String())
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, "CL", leaves[0].LeaveTypeCode)
	assert.Equal(t, "2026-09-10", leaves[0].FromDate)
	assert.Equal(t, StatusPending, leaves[0].Status)
}
