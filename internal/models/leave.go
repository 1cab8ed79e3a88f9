package models

import (
	"time"

	"order-sla-bot/pkg/workhours"

	"gorm.io/gorm"
)

type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// Leave is an absence request. Only approved leave pauses SLA clocks.
type Leave struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	UserID     uint        `gorm:"not null;index" json:"user_id"`
	StartAt    time.Time   `gorm:"not null;index" json:"start_at"`
	EndAt      time.Time   `gorm:"not null;index" json:"end_at"`
	Status     LeaveStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Reason     string      `json:"reason"`
	ReviewedBy *uint       `json:"reviewed_by"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (Leave) TableName() string {
	return "leaves"
}

// BeforeSave stores instants in UTC so SQLite compares them as text correctly.
func (l *Leave) BeforeSave(tx *gorm.DB) error {
	l.StartAt = l.StartAt.UTC()
	l.EndAt = l.EndAt.UTC()
	return nil
}

func (l *Leave) IsApproved() bool {
	return l.Status == LeaveStatusApproved
}

// ToRecord converts the row into the value the deadline engine consumes.
func (l *Leave) ToRecord() workhours.LeaveRecord {
	return workhours.LeaveRecord{Start: l.StartAt, End: l.EndAt}
}
