package store

import "errors"

var (
	// ErrSubjectNotFound indicates no user row for the given id or login id.
	ErrSubjectNotFound = errors.New("subject not found")

	// ErrDuplicateSubject indicates a create collided with an existing
	// login id or display name.
	ErrDuplicateSubject = errors.New("subject already exists")
)

// Subject is the projection of a user the auth and attendance core consumes.
type Subject struct {
	ID              string
	LoginID         string
	DisplayName     string
	HashedPassword  string
	PermissionCodes []string
	Rank            int
}

// UsersStore is the user-lookup contract consumed by the core. The full
// user-management service owns the table; the core only reads hashed
// passwords, permission codes and ranks, plus creation for bootstrap.
type UsersStore interface {
	// FindByLoginID retrieves a subject by login id, or ErrSubjectNotFound.
	FindByLoginID(loginID string) (*Subject, error)

	// FindByID retrieves a subject by stable id, or ErrSubjectNotFound.
	FindByID(id string) (*Subject, error)

	// FindByIDs retrieves subjects for all the given ids. Missing ids are
	// skipped rather than reported.
	FindByIDs(ids []string) ([]Subject, error)

	// Create inserts a new user with an already-hashed password and grants
	// the given permission codes.
	Create(subject *Subject) error
}
