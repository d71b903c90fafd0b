package gorm

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"

	"github.com/ssshoffice/office-in-go/pkg/model"
	"github.com/ssshoffice/office-in-go/pkg/server/store"
)

// Ensure AttendanceStore implements store.AttendanceStore
var _ store.AttendanceStore = (*AttendanceStore)(nil)

// AttendanceStore implements store.AttendanceStore using GORM
type AttendanceStore struct {
	db *gorm.DB
}

// NewAttendanceStore creates a new AttendanceStore
func NewAttendanceStore(db *gorm.DB) *AttendanceStore {
	return &AttendanceStore{db: db}
}

// Transaction wraps operations in a database transaction. The callback
// receives a store bound to the transaction handle; commit and rollback
// happen exactly once regardless of how the callback exits.
func (s *AttendanceStore) Transaction(fn func(store.AttendanceStore) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&AttendanceStore{db: tx})
	})
}

// FindStaleOpen returns open sessions whose base date is not the given one.
func (s *AttendanceStore) FindStaleOpen(baseDate string) ([]model.WorkSession, error) {
	var sessions []model.WorkSession
	tx := s.db.Where("base_date <> ? AND off_time IS NULL", baseDate).Find(&sessions)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return sessions, nil
}

// CloseSession sets the off-time on a session row.
func (s *AttendanceStore) CloseSession(subjectID, baseDate string, offTime time.Time) error {
	return s.db.Model(&model.WorkSession{}).
		Where("subject_id = ? AND base_date = ?", subjectID, baseDate).
		Update("off_time", offTime).Error
}

// CreateSession inserts a new open row for (subject, date).
func (s *AttendanceStore) CreateSession(subjectID, baseDate string) error {
	err := s.db.Create(&model.WorkSession{
		SubjectID: subjectID,
		BaseDate:  baseDate,
	}).Error
	if err != nil && isUniqueViolation(err) {
		return store.ErrDuplicateSession
	}
	return err
}

// FindSession loads the row for (subject, date).
func (s *AttendanceStore) FindSession(subjectID, baseDate string) (*model.WorkSession, error) {
	var session model.WorkSession
	tx := s.db.Where("subject_id = ? AND base_date = ?", subjectID, baseDate).First(&session)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrSessionNotFound
		}
		return nil, tx.Error
	}
	return &session, nil
}

// SaveSession persists mutations of an existing row.
func (s *AttendanceStore) SaveSession(session *model.WorkSession) error {
	return s.db.Save(session).Error
}

// DeleteSessions removes the subject's rows for the given base dates.
func (s *AttendanceStore) DeleteSessions(subjectID string, baseDates []string) (int64, error) {
	tx := s.db.Where("subject_id = ? AND base_date IN ?", subjectID, baseDates).
		Delete(&model.WorkSession{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

// ListSessions returns the subject's rows between two dates inclusive.
func (s *AttendanceStore) ListSessions(subjectID, startDate, endDate string) ([]model.WorkSession, error) {
	var sessions []model.WorkSession
	tx := s.db.Where("subject_id = ? AND base_date BETWEEN ? AND ?", subjectID, startDate, endDate).
		Order("base_date").
		Find(&sessions)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return sessions, nil
}

// ListSessionsForDate returns every subject's row for one date.
func (s *AttendanceStore) ListSessionsForDate(baseDate string) ([]model.WorkSession, error) {
	var sessions []model.WorkSession
	tx := s.db.Where("base_date = ?", baseDate).Find(&sessions)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return sessions, nil
}

// isUniqueViolation classifies a primary-key conflict. Postgres reports
// SQLSTATE 23505; the message check covers drivers that don't expose it.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "duplicate")
}
