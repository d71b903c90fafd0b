package attendance

import (
	"errors"
	"log"
	"time"

	"github.com/ssshoffice/office-in-go/pkg/auth/permission"
	"github.com/ssshoffice/office-in-go/pkg/identity"
	"github.com/ssshoffice/office-in-go/pkg/model"
	"github.com/ssshoffice/office-in-go/pkg/server/store"
)

var (
	// ErrAlreadyProcessed indicates a duplicate clock-in for the same day.
	ErrAlreadyProcessed = errors.New("already clocked in today")

	// ErrAlreadyClosed indicates a clock-out on a session whose off-time is
	// already set.
	ErrAlreadyClosed = errors.New("already clocked out today")

	// ErrNoActiveSession indicates a clock-out with no session for today.
	ErrNoActiveSession = errors.New("no active work session")

	// ErrForbidden indicates the actor may not touch the target subject's
	// sessions.
	ErrForbidden = errors.New("no permission for target subject")

	// ErrInternal indicates a storage or transaction failure. Detail is
	// logged, never surfaced.
	ErrInternal = errors.New("internal attendance error")
)

const baseDateLayout = "2006-01-02"

// ClockInResult reports a successful clock-in and any stale sessions the
// sweep closed along the way.
type ClockInResult struct {
	Success         bool     `json:"success"`
	AutoClosedDates []string `json:"autoClosedDates"`
}

// Manager is the work-session state machine. Per (subject, date) a session
// is either absent, open (off-time null) or closed; the composite primary
// key guarantees at most one row and converts clock-in races into
// ErrAlreadyProcessed.
type Manager struct {
	sessions store.AttendanceStore
	users    store.UsersStore

	// swappable for tests
	rankAllows func(targetRank, callerRank int) bool
	now        func() time.Time
}

// NewManager creates a Manager over the given stores.
func NewManager(sessions store.AttendanceStore, users store.UsersStore) *Manager {
	return &Manager{
		sessions:   sessions,
		users:      users,
		rankAllows: permission.RankAllows,
		now:        time.Now,
	}
}

// ClockIn opens today's session for the subject. Within one transaction it
// first closes every stale open session (any subject, any prior date) to
// that date's 23:59:59, then inserts the new row, so sweep and insert are
// atomic together.
func (m *Manager) ClockIn(subjectID string) (*ClockInResult, error) {
	today := m.today()
	autoClosed := []string{}

	err := m.sessions.Transaction(func(tx store.AttendanceStore) error {
		stale, err := tx.FindStaleOpen(today)
		if err != nil {
			return err
		}

		for _, s := range stale {
			off, err := endOfDay(s.BaseDate)
			if err != nil {
				return err
			}
			if err := tx.CloseSession(s.SubjectID, s.BaseDate, off); err != nil {
				return err
			}
			autoClosed = append(autoClosed, s.BaseDate)
		}

		return tx.CreateSession(subjectID, today)
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateSession) {
			return nil, ErrAlreadyProcessed
		}
		log.Printf("attendance: clock-in transaction failed: %v", err)
		return nil, ErrInternal
	}

	return &ClockInResult{Success: true, AutoClosedDates: autoClosed}, nil
}

// ClockOut updates today's session. With off set it closes the session
// (off-time = now); without it only the work detail is updated, which lets a
// subject amend the detail during the day.
func (m *Manager) ClockOut(subjectID string, detail string, off bool) (*model.WorkSession, error) {
	session, err := m.sessions.FindSession(subjectID, m.today())
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrNoActiveSession
		}
		log.Printf("attendance: clock-out lookup failed: %v", err)
		return nil, ErrInternal
	}

	if off && !session.Open() {
		return nil, ErrAlreadyClosed
	}

	if detail != "" {
		session.WorkDetail = &detail
	}
	if off {
		now := m.now()
		session.OffTime = &now
	}

	if err := m.sessions.SaveSession(session); err != nil {
		log.Printf("attendance: clock-out save failed: %v", err)
		return nil, ErrInternal
	}
	return session, nil
}

// DeleteSessions removes the target subject's sessions for the given base
// dates. Deleting rows that are already absent is not an error; the affected
// count says how many actually existed.
func (m *Manager) DeleteSessions(actor *identity.Identity, targetID string, baseDates []string) (int64, error) {
	if err := m.authorizeTarget(actor, targetID, permission.DeleteAnotherWork); err != nil {
		return 0, err
	}

	affected, err := m.sessions.DeleteSessions(targetID, baseDates)
	if err != nil {
		log.Printf("attendance: delete failed: %v", err)
		return 0, ErrInternal
	}
	return affected, nil
}

// ListSessions returns the target subject's sessions with base date between
// startDate and endDate inclusive.
func (m *Manager) ListSessions(actor *identity.Identity, targetID, startDate, endDate string) ([]model.WorkSession, error) {
	if err := m.authorizeTarget(actor, targetID, permission.ReadAnotherWork); err != nil {
		return nil, err
	}

	sessions, err := m.sessions.ListSessions(targetID, startDate, endDate)
	if err != nil {
		log.Printf("attendance: list failed: %v", err)
		return nil, ErrInternal
	}
	return sessions, nil
}

// TodayMembers returns the subjects that have a session today.
func (m *Manager) TodayMembers() ([]store.Subject, error) {
	sessions, err := m.sessions.ListSessionsForDate(m.today())
	if err != nil {
		log.Printf("attendance: today lookup failed: %v", err)
		return nil, ErrInternal
	}

	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.SubjectID)
	}
	if len(ids) == 0 {
		return []store.Subject{}, nil
	}

	subjects, err := m.users.FindByIDs(ids)
	if err != nil {
		log.Printf("attendance: today members lookup failed: %v", err)
		return nil, ErrInternal
	}
	return subjects, nil
}

// authorizeTarget gates cross-subject operations. Acting on your own rows
// always passes. Otherwise the actor needs the elevated code and must not
// reach above its own rank tier; unknown targets are indistinguishable from
// forbidden ones.
func (m *Manager) authorizeTarget(actor *identity.Identity, targetID, elevated string) error {
	if actor == nil {
		return ErrForbidden
	}
	if permission.Owns(targetID, actor.SubjectID) {
		return nil
	}
	if !permission.Satisfies(actor, elevated) {
		return ErrForbidden
	}

	target, err := m.users.FindByID(targetID)
	if err != nil {
		if errors.Is(err, store.ErrSubjectNotFound) {
			return ErrForbidden
		}
		log.Printf("attendance: target lookup failed: %v", err)
		return ErrInternal
	}
	caller, err := m.users.FindByID(actor.SubjectID)
	if err != nil {
		if errors.Is(err, store.ErrSubjectNotFound) {
			return ErrForbidden
		}
		log.Printf("attendance: caller lookup failed: %v", err)
		return ErrInternal
	}

	if !m.rankAllows(target.Rank, caller.Rank) {
		return ErrForbidden
	}
	return nil
}

func (m *Manager) today() string {
	return m.now().Format(baseDateLayout)
}

// endOfDay returns "<baseDate> 23:59:59" in server-local time.
func endOfDay(baseDate string) (time.Time, error) {
	day, err := time.ParseInLocation(baseDateLayout, baseDate, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(23*time.Hour + 59*time.Minute + 59*time.Second), nil
}
