package attendance

import (
	"context"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gdb, mock
}

func insertColumns(t *testing.T, query string) []string {
	t.Helper()
	m := regexp.MustCompile(`\(([^)]+)\)`).FindStringSubmatch(query)
	require.NotNil(t, m, "no column list in %q", query)

	parts := strings.Split(m[1], ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		cols = append(cols, strings.Trim(strings.TrimSpace(p), `"`))
	}
	return cols
}

func TestRepository_AppendColumnsExistInSchema(t *testing.T) {
	gdb, _ := newGormDB(t)

	ddl, err := os.ReadFile("../../migrations/0002_create_attendance.up.sql")
	require.NoError(t, err)

	stmt := gdb.Session(&gorm.Session{DryRun: true, SkipDefaultTransaction: true}).Create(&PunchEvent{
		UserID:    uuid.New(),
		Seq:       1,
		PunchType: PunchIn,
		PunchedAt: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		Latitude:  -6.2,
		Longitude: 106.8,
	}).Statement

	query := stmt.SQL.String()
	require.Contains(t, query, `INSERT INTO "attendance_logs"`)
	for _, col := range insertColumns(t, query) {
		assert.Contains(t, string(ddl), col, "column %q missing from attendance schema", col)
	}
}

// The append must run on the caller's transaction so it commits together with
// the rest of the punch sequence.
func TestRepository_WithTxUsesTransactionConnection(t *testing.T) {
	gdb, poolMock := newGormDB(t)

	txDB, txMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { txDB.Close() })

	txMock.ExpectBegin()
	txMock.ExpectQuery(`INSERT INTO "attendance_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	txMock.ExpectCommit()

	tx, err := txDB.Begin()
	require.NoError(t, err)

	repo := NewRepository(gdb).WithTx(tx)
	err = repo.Append(context.Background(), &PunchEvent{
		UserID:    uuid.New(),
		Seq:       1,
		PunchType: PunchIn,
		PunchedAt: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		Latitude:  -6.2,
		Longitude: 106.8,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.NoError(t, txMock.ExpectationsWereMet())
	assert.NoError(t, poolMock.ExpectationsWereMet())
}
