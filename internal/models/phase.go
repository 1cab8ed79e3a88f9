package models

import (
	"time"

	"gorm.io/gorm"
)

type ReviewStatus string

const (
	ReviewPending                ReviewStatus = "pending"
	ReviewApproved               ReviewStatus = "approved"
	ReviewApprovedWithChanges    ReviewStatus = "approved_with_changes"
	ReviewDisapprovedWithChanges ReviewStatus = "disapproved_with_changes"
)

// NeedsChanges reports whether the reviewer sent the phase back.
func (s ReviewStatus) NeedsChanges() bool {
	return s == ReviewApprovedWithChanges || s == ReviewDisapprovedWithChanges
}

type Phase struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	TaskID   uint   `gorm:"not null;index" json:"task_id"`
	Position int    `gorm:"not null" json:"position"`
	Name     string `gorm:"not null" json:"name"`

	ReviewStatus ReviewStatus `gorm:"type:varchar(30);not null;default:'pending'" json:"review_status"`

	SLAMinutes  int        `gorm:"not null" json:"sla_minutes"`
	StartedAt   *time.Time `json:"started_at"`
	SLADeadline *time.Time `json:"sla_deadline"`
	SubmittedAt *time.Time `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`

	ChangeMinutes  int        `gorm:"not null;default:0" json:"change_minutes"`
	ChangeDeadline *time.Time `json:"change_deadline"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Phase) TableName() string {
	return "phases"
}

func (p *Phase) BeforeSave(tx *gorm.DB) error {
	utcPtr(p.StartedAt)
	utcPtr(p.SLADeadline)
	utcPtr(p.SubmittedAt)
	utcPtr(p.ReviewedAt)
	utcPtr(p.ChangeDeadline)
	return nil
}

// IsStarted reports whether the phase SLA clock has been started.
func (p *Phase) IsStarted() bool {
	return p.StartedAt != nil
}

// AwaitingReview reports whether the phase was submitted and waits for a reviewer.
func (p *Phase) AwaitingReview() bool {
	return p.SubmittedAt != nil && p.ReviewStatus == ReviewPending
}
