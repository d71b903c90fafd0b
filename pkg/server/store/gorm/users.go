package gorm

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ssshoffice/office-in-go/pkg/model"
	"github.com/ssshoffice/office-in-go/pkg/server/store"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

// FindByLoginID retrieves a subject by login id. Soft-deleted users are
// filtered by GORM automatically.
func (s *UsersStore) FindByLoginID(loginID string) (*store.Subject, error) {
	return s.findOne("login_id = ?", loginID)
}

// FindByID retrieves a subject by stable id.
func (s *UsersStore) FindByID(id string) (*store.Subject, error) {
	return s.findOne("id = ?", id)
}

// FindByIDs retrieves subjects for the given ids, skipping missing ones.
func (s *UsersStore) FindByIDs(ids []string) ([]store.Subject, error) {
	var users []model.User
	tx := s.db.Preload("Permissions").Where("id IN ?", ids).Find(&users)
	if tx.Error != nil {
		return nil, tx.Error
	}

	subjects := make([]store.Subject, 0, len(users))
	for _, u := range users {
		subjects = append(subjects, *toSubject(&u))
	}
	return subjects, nil
}

// Create inserts a user and its permission grants. Permission rows must
// already exist; only the join records are written.
func (s *UsersStore) Create(subject *store.Subject) error {
	user := model.User{
		ID:             subject.ID,
		LoginID:        subject.LoginID,
		DisplayName:    subject.DisplayName,
		HashedPassword: subject.HashedPassword,
		Rank:           subject.Rank,
	}
	for _, code := range subject.PermissionCodes {
		user.Permissions = append(user.Permissions, model.Permission{Code: code})
	}
	err := s.db.Omit("Permissions.*").Create(&user).Error
	if err != nil && isUniqueViolation(err) {
		return store.ErrDuplicateSubject
	}
	return err
}

func (s *UsersStore) findOne(query string, arg interface{}) (*store.Subject, error) {
	var user model.User
	tx := s.db.Preload("Permissions").Where(query, arg).First(&user)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrSubjectNotFound
		}
		return nil, tx.Error
	}
	return toSubject(&user), nil
}

func toSubject(u *model.User) *store.Subject {
	return &store.Subject{
		ID:              u.ID,
		LoginID:         u.LoginID,
		DisplayName:     u.DisplayName,
		HashedPassword:  u.HashedPassword,
		PermissionCodes: u.PermissionCodes(),
		Rank:            u.Rank,
	}
}
