package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents an office member account.
type User struct {
	ID             string `gorm:"column:id;primaryKey"`
	LoginID        string `gorm:"column:login_id;uniqueIndex;not null"`
	HashedPassword string `gorm:"column:hashed_password;not null"`
	DisplayName    string `gorm:"column:display_name;uniqueIndex;not null"`
	IsCertified    bool   `gorm:"column:is_certified;default:false"`

	// Rank is the role tier used for cross-user attendance operations.
	// Higher values outrank lower ones.
	Rank int `gorm:"column:rank;default:0"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at"`

	Permissions []Permission `gorm:"many2many:user_permissions;foreignKey:ID;joinForeignKey:UserID;References:Code;joinReferences:PermissionCode"`
}

func (User) TableName() string {
	return "users"
}

// PermissionCodes flattens the associated permissions into a code list.
func (u User) PermissionCodes() []string {
	codes := make([]string, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		codes = append(codes, p.Code)
	}
	return codes
}
