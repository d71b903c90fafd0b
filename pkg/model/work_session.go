package model

import "time"

// WorkSession is one attendance record, keyed by subject and calendar date.
// A row with a null OffTime is an open session (the subject is clocked in).
type WorkSession struct {
	SubjectID  string     `gorm:"column:subject_id;primaryKey"`
	BaseDate   string     `gorm:"column:base_date;primaryKey;size:10"`
	WorkDetail *string    `gorm:"column:work_detail;size:10000"`
	OffTime    *time.Time `gorm:"column:off_time"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (WorkSession) TableName() string {
	return "work_sessions"
}

// Open reports whether the session is still clocked in.
func (w WorkSession) Open() bool {
	return w.OffTime == nil
}
