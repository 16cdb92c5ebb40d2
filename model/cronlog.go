package model

import "time"

// CronJobLog records each scheduled job run for auditing
type CronJobLog struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	JobName     string     `gorm:"index;not null;type:varchar(100)" json:"job_name"`
	Status      string     `gorm:"not null;type:varchar(20)" json:"status"` // running, completed, failed
	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Message     string     `gorm:"type:text" json:"message,omitempty"`
	ErrorMsg    string     `gorm:"type:text" json:"error_msg,omitempty"`
}
