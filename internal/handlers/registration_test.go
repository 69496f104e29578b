package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherhub/gather-api/internal/config"
	"github.com/gatherhub/gather-api/internal/models"
	"github.com/gatherhub/gather-api/internal/notifier"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRegistrationHandler(db *gorm.DB) *RegistrationHandler {
	ah := testAuthHandler(db)
	n := notifier.NewEmailNotifier(&config.Config{}, zerolog.Nop())
	return NewRegistrationHandler(db, ah, n, zerolog.Nop())
}

func createTestEvent(t *testing.T, db *gorm.DB, organizerID uint, capacity int) *models.Event {
	t.Helper()

	event := models.Event{
		Title:       "Go Meetup",
		Description: "Monthly meetup",
		DateTime:    time.Now().Add(48 * time.Hour),
		Location:    "Community Hall",
		Capacity:    capacity,
		OrganizerID: organizerID,
	}
	require.NoError(t, db.Create(&event).Error)
	return &event
}

func statusOf(t *testing.T, err error) int {
	t.Helper()

	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	return se.GetStatus()
}

func TestHandleRegisterWaitlistScenario(t *testing.T) {
	db := setupTestDB(t)
	handler := newRegistrationHandler(db)
	ah := testAuthHandler(db)

	organizer := createTestUser(t, db, "organizer")
	userA := createTestUser(t, db, "alice")
	userB := createTestUser(t, db, "bob")
	event := createTestEvent(t, db, organizer.ID, 1)

	ctx := context.Background()

	// User A takes the only slot.
	resp, err := handler.HandleRegister(ctx, &RegisterInput{
		Credentials: credentialsFor(t, ah, userA),
		ID:          event.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 201, resp.Status)
	assert.False(t, resp.Body.Waitlisted)
	assert.Equal(t, 1, attendeeCount(db, event.ID))
	assert.True(t, event.IsFull(attendeeCount(db, event.ID)))

	// User B lands on the waitlist; the attendee count does not move.
	resp, err = handler.HandleRegister(ctx, &RegisterInput{
		Credentials: credentialsFor(t, ah, userB),
		ID:          event.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 202, resp.Status)
	assert.True(t, resp.Body.Waitlisted)
	assert.Equal(t, 1, attendeeCount(db, event.ID))

	var waitlisted int64
	db.Model(&models.EventRegistration{}).
		Where("event_id = ? AND is_waitlisted = ? AND is_active = ?", event.ID, true, true).
		Count(&waitlisted)
	assert.Equal(t, int64(1), waitlisted)

	// User A unregisters; the slot frees up but B is not promoted.
	_, err = handler.HandleUnregister(ctx, &UnregisterInput{
		Credentials: credentialsFor(t, ah, userA),
		ID:          event.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, attendeeCount(db, event.ID))
	assert.False(t, event.IsFull(attendeeCount(db, event.ID)))

	var reg models.EventRegistration
	require.NoError(t, db.Where("user_id = ? AND event_id = ?", userB.ID, event.ID).First(&reg).Error)
	assert.True(t, reg.IsWaitlisted, "waitlisted registration must not be promoted")
	assert.True(t, reg.IsActive)
}

func TestHandleRegisterDuplicate(t *testing.T) {
	db := setupTestDB(t)
	handler := newRegistrationHandler(db)
	ah := testAuthHandler(db)

	organizer := createTestUser(t, db, "organizer")
	user := createTestUser(t, db, "alice")
	event := createTestEvent(t, db, organizer.ID, 5)
	creds := credentialsFor(t, ah, user)

	_, err := handler.HandleRegister(context.Background(), &RegisterInput{Credentials: creds, ID: event.ID})
	require.NoError(t, err)

	_, err = handler.HandleRegister(context.Background(), &RegisterInput{Credentials: creds, ID: event.ID})
	require.Error(t, err)
	assert.Equal(t, 400, statusOf(t, err))

	// The ledger keeps a single row for the pair.
	var count int64
	db.Model(&models.EventRegistration{}).
		Where("user_id = ? AND event_id = ?", user.ID, event.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestHandleRegisterOrganizer(t *testing.T) {
	db := setupTestDB(t)
	handler := newRegistrationHandler(db)
	ah := testAuthHandler(db)

	organizer := createTestUser(t, db, "organizer")
	event := createTestEvent(t, db, organizer.ID, 5)

	_, err := handler.HandleRegister(context.Background(), &RegisterInput{
		Credentials: credentialsFor(t, ah, organizer),
		ID:          event.ID,
	})
	require.Error(t, err)
	assert.Equal(t, 400, statusOf(t, err))
	assert.Equal(t, 0, attendeeCount(db, event.ID))
}

func TestHandleRegisterMissingEvent(t *testing.T) {
	db := setupTestDB(t)
	handler := newRegistrationHandler(db)
	ah := testAuthHandler(db)

	user := createTestUser(t, db, "alice")

	_, err := handler.HandleRegister(context.Background(), &RegisterInput{
		Credentials: credentialsFor(t, ah, user),
		ID:          999,
	})
	require.Error(t, err)
	assert.Equal(t, 404, statusOf(t, err))
}

func TestHandleRegisterSoftDeletedEvent(t *testing.T) {
	db := setupTestDB(t)
	handler := newRegistrationHandler(db)
	ah := testAuthHandler(db)

	organizer := createTestUser(t, db, "organizer")
	user := createTestUser(t, db, "alice")
	event := createTestEvent(t, db, organizer.ID, 5)
	require.NoError(t, db.Delete(event).Error)

	_, err := handler.HandleRegister(context.Background(), &RegisterInput{
		Credentials: credentialsFor(t, ah, user),
		ID:          event.ID,
	})
	require.Error(t, err)
	assert.Equal(t, 404, statusOf(t, err))
}

func TestHandleUnregisterNotRegistered(t *testing.T) {
	db := setupTestDB(t)
	handler := newRegistrationHandler(db)
	ah := testAuthHandler(db)

	organizer := createTestUser(t, db, "organizer")
	user := createTestUser(t, db, "alice")
	event := createTestEvent(t, db, organizer.ID, 5)

	_, err := handler.HandleUnregister(context.Background(), &UnregisterInput{
		Credentials: credentialsFor(t, ah, user),
		ID:          event.ID,
	})
	require.Error(t, err)
	assert.Equal(t, 400, statusOf(t, err))

	// No state was mutated.
	var count int64
	db.Model(&models.EventRegistration{}).Where("event_id = ?", event.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestHandleRegisterAgainAfterUnregister(t *testing.T) {
	db := setupTestDB(t)
	handler := newRegistrationHandler(db)
	ah := testAuthHandler(db)

	organizer := createTestUser(t, db, "organizer")
	user := createTestUser(t, db, "alice")
	event := createTestEvent(t, db, organizer.ID, 5)
	creds := credentialsFor(t, ah, user)
	ctx := context.Background()

	_, err := handler.HandleRegister(ctx, &RegisterInput{Credentials: creds, ID: event.ID})
	require.NoError(t, err)
	_, err = handler.HandleUnregister(ctx, &UnregisterInput{Credentials: creds, ID: event.ID})
	require.NoError(t, err)

	// Re-registration reactivates the existing ledger row.
	resp, err := handler.HandleRegister(ctx, &RegisterInput{Credentials: creds, ID: event.ID})
	require.NoError(t, err)
	assert.Equal(t, 201, resp.Status)
	assert.Equal(t, 1, attendeeCount(db, event.ID))

	var count int64
	db.Model(&models.EventRegistration{}).
		Where("user_id = ? AND event_id = ?", user.ID, event.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}
