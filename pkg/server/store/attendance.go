package store

import (
	"errors"
	"time"

	"github.com/ssshoffice/office-in-go/pkg/model"
)

var (
	// ErrSessionNotFound indicates no work session row for (subject, date).
	ErrSessionNotFound = errors.New("work session not found")

	// ErrDuplicateSession indicates an insert collided with the composite
	// primary key: the subject already has a row for that date.
	ErrDuplicateSession = errors.New("work session already exists")
)

// AttendanceStore abstracts work-session storage operations.
type AttendanceStore interface {
	// Transaction wraps operations in a database transaction. The provided
	// function receives a transactional AttendanceStore; returning an error
	// rolls the transaction back.
	Transaction(fn func(AttendanceStore) error) error

	// FindStaleOpen returns all rows, across all subjects, whose base date
	// differs from the given one and whose off-time is still null.
	FindStaleOpen(baseDate string) ([]model.WorkSession, error)

	// CloseSession sets the off-time on an open session.
	CloseSession(subjectID, baseDate string, offTime time.Time) error

	// CreateSession inserts a new open row for (subject, date). Returns
	// ErrDuplicateSession on a primary-key conflict.
	CreateSession(subjectID, baseDate string) error

	// FindSession loads the row for (subject, date), or ErrSessionNotFound.
	FindSession(subjectID, baseDate string) (*model.WorkSession, error)

	// SaveSession persists detail/off-time mutations of an existing row.
	SaveSession(session *model.WorkSession) error

	// DeleteSessions removes all rows matching the subject and any of the
	// base dates, returning the affected count. Zero is not an error.
	DeleteSessions(subjectID string, baseDates []string) (int64, error)

	// ListSessions returns the subject's rows with base date between start
	// and end inclusive, ordered by base date.
	ListSessions(subjectID, startDate, endDate string) ([]model.WorkSession, error)

	// ListSessionsForDate returns every subject's row for one date.
	ListSessionsForDate(baseDate string) ([]model.WorkSession, error)
}
