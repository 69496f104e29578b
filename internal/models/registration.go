package models

import (
	"time"

	"gorm.io/gorm"
)

// EventRegistration is the ledger of registration intent: one row per
// (user, event) pair, never deleted in the normal flow. Unregistering
// flips IsActive off; the row stays for the audit trail.
type EventRegistration struct {
	gorm.Model
	UserID       uint      `json:"user_id" gorm:"uniqueIndex:idx_user_event"`
	EventID      uint      `json:"event_id" gorm:"uniqueIndex:idx_user_event"`
	User         User      `json:"user" gorm:"foreignKey:UserID"`
	Event        Event     `json:"-" gorm:"foreignKey:EventID"`
	RegisteredAt time.Time `json:"registered_at"`
	IsWaitlisted bool      `json:"is_waitlisted"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
}
