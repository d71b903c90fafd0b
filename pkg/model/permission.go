package model

// Permission represents a single capability grant. Codes are opaque
// 8-character strings; the known values live in pkg/auth/permission.
type Permission struct {
	Code        string `gorm:"column:code;primaryKey;size:8"`
	Description string `gorm:"column:description;size:500;not null"`
}

func (Permission) TableName() string {
	return "permissions"
}
