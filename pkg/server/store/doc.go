// Package store provides storage abstractions for the office server.
//
// This package defines interfaces for database operations, allowing the
// endpoints and the attendance manager to be decoupled from the specific
// database implementation. This enables easier testing with mocks and
// potential support for different storage backends.
//
// # Available Stores
//
//   - AttendanceStore: work-session operations (sweep, insert, close, delete)
//   - UsersStore: user lookup for authentication and rank checks
//   - HealthStore: connectivity checks
//
// Implementations backed by GORM live in the gorm subpackage.
package store
