// Package gorm implements the store interfaces on top of GORM and
// PostgreSQL. Each store holds a *gorm.DB; the attendance store can rebind
// itself to a transaction handle via Transaction.
package gorm
