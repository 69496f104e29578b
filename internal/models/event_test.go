package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventValidate(t *testing.T) {
	now := time.Now()
	valid := Event{
		Title:    "Go Meetup",
		Location: "Community Hall",
		Capacity: 10,
		DateTime: now.Add(24 * time.Hour),
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, valid.Validate(now, true))
	})

	t.Run("PastDate", func(t *testing.T) {
		event := valid
		event.DateTime = now.Add(-time.Hour)
		assert.Error(t, event.Validate(now, true))
	})

	t.Run("PastDateAllowedWhenUnchanged", func(t *testing.T) {
		event := valid
		event.DateTime = now.Add(-time.Hour)
		assert.NoError(t, event.Validate(now, false))
	})

	t.Run("ZeroCapacity", func(t *testing.T) {
		event := valid
		event.Capacity = 0
		assert.Error(t, event.Validate(now, true))
	})

	t.Run("NegativeCapacity", func(t *testing.T) {
		event := valid
		event.Capacity = -5
		assert.Error(t, event.Validate(now, true))
	})

	t.Run("CapacityOne", func(t *testing.T) {
		event := valid
		event.Capacity = 1
		assert.NoError(t, event.Validate(now, true))
	})

	t.Run("MissingTitle", func(t *testing.T) {
		event := valid
		event.Title = "  "
		assert.Error(t, event.Validate(now, true))
	})

	t.Run("MissingLocation", func(t *testing.T) {
		event := valid
		event.Location = ""
		assert.Error(t, event.Validate(now, true))
	})
}

func TestEventCapacity(t *testing.T) {
	event := Event{Capacity: 2, OrganizerID: 1}

	t.Run("NotFull", func(t *testing.T) {
		assert.False(t, event.IsFull(0))
		assert.False(t, event.IsFull(1))
		assert.Equal(t, 2, event.AvailableSlots(0))
		assert.Equal(t, 1, event.AvailableSlots(1))
	})

	t.Run("FullAtCapacity", func(t *testing.T) {
		assert.True(t, event.IsFull(2))
		assert.Equal(t, 0, event.AvailableSlots(2))
	})

	t.Run("FullStaysFullOverCapacity", func(t *testing.T) {
		// Over-capacity counts can only come from out-of-band writes;
		// slots are clamped at zero rather than reported negative.
		assert.True(t, event.IsFull(3))
		assert.Equal(t, 0, event.AvailableSlots(3))
	})

	t.Run("CapacityOneAdmitsExactlyOne", func(t *testing.T) {
		small := Event{Capacity: 1, OrganizerID: 1}
		assert.False(t, small.IsFull(0))
		assert.True(t, small.IsFull(1))
	})
}

func TestEventCanRegister(t *testing.T) {
	event := Event{Capacity: 2, OrganizerID: 7}

	t.Run("AllowsNewUser", func(t *testing.T) {
		assert.True(t, event.CanRegister(3, 0, false))
	})

	t.Run("RejectsOrganizer", func(t *testing.T) {
		assert.False(t, event.CanRegister(7, 0, false))
	})

	t.Run("RejectsWhenFull", func(t *testing.T) {
		assert.False(t, event.CanRegister(3, 2, false))
	})

	t.Run("RejectsExistingAttendee", func(t *testing.T) {
		assert.False(t, event.CanRegister(3, 1, true))
	})
}
