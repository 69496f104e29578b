package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Event struct {
	gorm.Model
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DateTime    time.Time `json:"date_time"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	OrganizerID uint      `json:"organizer_id"`
	Organizer   User      `json:"organizer" gorm:"foreignKey:OrganizerID"`
	Attendees   []User    `json:"-" gorm:"many2many:event_attendees;"`
}

// Validate checks the event invariants. The past-date check only runs when
// requireUpcoming is set: on create, and on updates that change DateTime.
// Updating other fields of an event whose date has since elapsed stays
// possible.
func (e *Event) Validate(now time.Time, requireUpcoming bool) error {
	if strings.TrimSpace(e.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(e.Location) == "" {
		return errors.New("location is required")
	}
	if e.Capacity < 1 {
		return errors.New("capacity must be at least 1")
	}
	if requireUpcoming && e.DateTime.Before(now) {
		return errors.New("event date cannot be in the past")
	}
	return nil
}

// IsFull reports whether the event has reached capacity given the current
// number of active attendees. Waitlisted registrations do not count.
func (e *Event) IsFull(attendeeCount int) bool {
	return attendeeCount >= e.Capacity
}

// AvailableSlots returns the remaining capacity, clamped at zero. The raw
// count can exceed capacity if rows were written outside the registration
// workflow; callers always see zero in that case.
func (e *Event) AvailableSlots(attendeeCount int) int {
	if slots := e.Capacity - attendeeCount; slots > 0 {
		return slots
	}
	return 0
}

// CanRegister reports whether userID may take a non-waitlisted slot:
// the event must not be full, the user must not be the organizer, and the
// user must not already be attending.
func (e *Event) CanRegister(userID uint, attendeeCount int, alreadyAttending bool) bool {
	return !e.IsFull(attendeeCount) && userID != e.OrganizerID && !alreadyAttending
}
