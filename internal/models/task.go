package models

import (
	"time"

	"gorm.io/gorm"
)

type OrderType string

const (
	OrderSocialMediaPost OrderType = "social_media_post"
	OrderLogoDesign      OrderType = "logo_design"
	OrderWebsite         OrderType = "website"
)

// ParseOrderType accepts the stored value or a short alias ("post", "logo", "web").
func ParseOrderType(s string) (OrderType, bool) {
	switch s {
	case "social_media_post", "post", "smm":
		return OrderSocialMediaPost, true
	case "logo_design", "logo":
		return OrderLogoDesign, true
	case "website", "web":
		return OrderWebsite, true
	}
	return "", false
}

// IsMultiPhase reports whether the order is delivered in several reviewed phases.
func (t OrderType) IsMultiPhase() bool {
	return t == OrderWebsite
}

type TaskStatus string

const (
	TaskAssigned     TaskStatus = "assigned"
	TaskAcknowledged TaskStatus = "acknowledged"
	TaskInProgress   TaskStatus = "in_progress"
	TaskCompleted    TaskStatus = "completed"
	TaskApproved     TaskStatus = "approved"
	TaskOnHold       TaskStatus = "on_hold"
	TaskCancelled    TaskStatus = "cancelled"
)

// IsResolved reports whether no further work is expected.
func (s TaskStatus) IsResolved() bool {
	return s == TaskApproved || s == TaskCancelled
}

// IsActive reports whether an assignee clock can be running.
func (s TaskStatus) IsActive() bool {
	return s == TaskAssigned || s == TaskAcknowledged || s == TaskInProgress
}

// Task is one order assigned to a developer. Single-deliverable orders carry
// one phase, websites one phase per stage.
type Task struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Reference   string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"reference"`
	OrderType   OrderType  `gorm:"type:varchar(30);not null" json:"order_type"`
	Title       string     `gorm:"not null" json:"title"`
	CreatedByID uint       `gorm:"not null;index" json:"created_by_id"`
	AssigneeID  uint       `gorm:"not null;index" json:"assignee_id"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'assigned';index" json:"status"`

	AssignedAt     time.Time  `gorm:"not null" json:"assigned_at"`
	AckMinutes     int        `gorm:"not null" json:"ack_minutes"`
	AckDeadline    time.Time  `gorm:"not null" json:"ack_deadline"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`

	HeldStatus TaskStatus `gorm:"type:varchar(20)" json:"held_status"`
	HeldAt     *time.Time `json:"held_at"`

	// EscalatedFor is the deadline that was last reported as breached.
	EscalatedFor *time.Time `json:"escalated_for"`
	EscalatedAt  *time.Time `json:"escalated_at"`

	CurrentPhase int     `gorm:"not null;default:0" json:"current_phase"`
	Phases       []Phase `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"phases"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// BeforeSave stores instants in UTC so SQLite compares them as text correctly.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	t.AssignedAt = t.AssignedAt.UTC()
	t.AckDeadline = t.AckDeadline.UTC()
	utcPtr(t.AcknowledgedAt)
	utcPtr(t.HeldAt)
	utcPtr(t.EscalatedFor)
	utcPtr(t.EscalatedAt)
	return nil
}

func utcPtr(t *time.Time) {
	if t != nil {
		*t = t.UTC()
	}
}

// Phase returns the phase currently being worked or reviewed.
func (t *Task) Phase() *Phase {
	if t.CurrentPhase < 0 || t.CurrentPhase >= len(t.Phases) {
		return nil
	}
	return &t.Phases[t.CurrentPhase]
}

// IsLastPhase reports whether the current phase is the final one.
func (t *Task) IsLastPhase() bool {
	return t.CurrentPhase == len(t.Phases)-1
}

// WasEscalated reports whether the given deadline has already been reported.
func (t *Task) WasEscalated(deadline time.Time) bool {
	return t.EscalatedFor != nil && t.EscalatedFor.Equal(deadline)
}
