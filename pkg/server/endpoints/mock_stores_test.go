package endpoints

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ssshoffice/office-in-go/pkg/model"
	"github.com/ssshoffice/office-in-go/pkg/server/store"
)

// MockUsersStore implements store.UsersStore for testing using testify/mock
type MockUsersStore struct {
	mock.Mock
}

func NewMockUsersStore() *MockUsersStore {
	return &MockUsersStore{}
}

func (m *MockUsersStore) FindByLoginID(loginID string) (*store.Subject, error) {
	args := m.Called(loginID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Subject), args.Error(1)
}

func (m *MockUsersStore) FindByID(id string) (*store.Subject, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Subject), args.Error(1)
}

func (m *MockUsersStore) FindByIDs(ids []string) ([]store.Subject, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Subject), args.Error(1)
}

func (m *MockUsersStore) Create(subject *store.Subject) error {
	args := m.Called(subject)
	return args.Error(0)
}

// MockAttendanceStore implements store.AttendanceStore for testing using testify/mock
type MockAttendanceStore struct {
	mock.Mock
}

func NewMockAttendanceStore() *MockAttendanceStore {
	return &MockAttendanceStore{}
}

func (m *MockAttendanceStore) Transaction(fn func(store.AttendanceStore) error) error {
	args := m.Called(fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(m)
}

func (m *MockAttendanceStore) FindStaleOpen(baseDate string) ([]model.WorkSession, error) {
	args := m.Called(baseDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkSession), args.Error(1)
}

func (m *MockAttendanceStore) CloseSession(subjectID, baseDate string, offTime time.Time) error {
	args := m.Called(subjectID, baseDate, offTime)
	return args.Error(0)
}

func (m *MockAttendanceStore) CreateSession(subjectID, baseDate string) error {
	args := m.Called(subjectID, baseDate)
	return args.Error(0)
}

func (m *MockAttendanceStore) FindSession(subjectID, baseDate string) (*model.WorkSession, error) {
	args := m.Called(subjectID, baseDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkSession), args.Error(1)
}

func (m *MockAttendanceStore) SaveSession(session *model.WorkSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockAttendanceStore) DeleteSessions(subjectID string, baseDates []string) (int64, error) {
	args := m.Called(subjectID, baseDates)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttendanceStore) ListSessions(subjectID, startDate, endDate string) ([]model.WorkSession, error) {
	args := m.Called(subjectID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkSession), args.Error(1)
}

func (m *MockAttendanceStore) ListSessionsForDate(baseDate string) ([]model.WorkSession, error) {
	args := m.Called(baseDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkSession), args.Error(1)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func NewMockHealthStore() *MockHealthStore {
	return &MockHealthStore{}
}

func (m *MockHealthStore) CheckConnectivity() error {
	args := m.Called()
	return args.Error(0)
}
