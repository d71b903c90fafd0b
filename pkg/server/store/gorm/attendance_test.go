package gorm

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssshoffice/office-in-go/pkg/server/store"
)

func sessionColumns() []string {
	return []string{"subject_id", "base_date", "work_detail", "off_time", "created_at", "updated_at"}
}

func TestFindStaleOpen(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewAttendanceStore(db)

	rows := sqlmock.NewRows(sessionColumns()).
		AddRow("subject-1", "2024-03-13", nil, nil, time.Now(), time.Now()).
		AddRow("subject-2", "2024-03-14", nil, nil, time.Now(), time.Now())

	mock.ExpectQuery(`SELECT (.+) FROM "work_sessions" WHERE base_date <> \$1 AND off_time IS NULL`).
		WithArgs("2024-03-15").
		WillReturnRows(rows)

	sessions, err := s.FindStaleOpen("2024-03-15")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "2024-03-13", sessions[0].BaseDate)
	assert.True(t, sessions[0].Open())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSession(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewAttendanceStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "work_sessions"`).
		WithArgs("subject-1", "2024-03-15", nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.CreateSession("subject-1", "2024-03-15"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSession_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewAttendanceStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "work_sessions"`).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := s.CreateSession("subject-1", "2024-03-15")
	assert.ErrorIs(t, err, store.ErrDuplicateSession)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseSession(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewAttendanceStore(db)

	off := time.Date(2024, 3, 14, 23, 59, 59, 0, time.Local)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "work_sessions" SET`).
		WithArgs(off, sqlmock.AnyArg(), "subject-1", "2024-03-14").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.CloseSession("subject-1", "2024-03-14", off))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSession_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewAttendanceStore(db)

	mock.ExpectQuery(`SELECT (.+) FROM "work_sessions" WHERE subject_id = \$1 AND base_date = \$2`).
		WithArgs("subject-1", "2024-03-15").
		WillReturnRows(sqlmock.NewRows(sessionColumns()))

	_, err := s.FindSession("subject-1", "2024-03-15")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSessions(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewAttendanceStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "work_sessions" WHERE subject_id = \$1 AND base_date IN \(\$2,\$3\)`).
		WithArgs("subject-1", "2024-03-13", "2024-03-14").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	affected, err := s.DeleteSessions("subject-1", []string{"2024-03-13", "2024-03-14"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListSessions(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewAttendanceStore(db)

	rows := sqlmock.NewRows(sessionColumns()).
		AddRow("subject-1", "2024-03-13", nil, time.Now(), time.Now(), time.Now()).
		AddRow("subject-1", "2024-03-14", nil, nil, time.Now(), time.Now())

	mock.ExpectQuery(`SELECT (.+) FROM "work_sessions" WHERE subject_id = \$1 AND base_date BETWEEN \$2 AND \$3 ORDER BY base_date`).
		WithArgs("subject-1", "2024-03-01", "2024-03-31").
		WillReturnRows(rows)

	sessions, err := s.ListSessions("subject-1", "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.False(t, sessions[0].Open())
	assert.True(t, sessions[1].Open())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewAttendanceStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "work_sessions"`).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := s.Transaction(func(tx store.AttendanceStore) error {
		return tx.CreateSession("subject-1", "2024-03-15")
	})
	assert.ErrorIs(t, err, store.ErrDuplicateSession)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction_Commits(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewAttendanceStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "work_sessions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Transaction(func(tx store.AttendanceStore) error {
		return tx.CreateSession("subject-1", "2024-03-15")
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
