package handlers

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/gatherhub/gather-api/internal/auth"
	"github.com/gatherhub/gather-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentRegistration races many users against a small event. The
// capacity check and the attendee insert run in one serialized
// transaction, so the event can never be oversold; late arrivals land on
// the waitlist instead.
func TestConcurrentRegistration(t *testing.T) {
	db := setupTestDB(t)
	handler := newRegistrationHandler(db)
	ah := testAuthHandler(db)

	organizer := createTestUser(t, db, "organizer")
	event := createTestEvent(t, db, organizer.ID, 5)

	concurrency := 20
	creds := make([]auth.Credentials, concurrency)
	for i := range creds {
		user := createTestUser(t, db, fmt.Sprintf("user%d", i))
		creds[i] = credentialsFor(t, ah, user)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	registered := 0
	waitlisted := 0

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(c auth.Credentials) {
			defer wg.Done()

			resp, err := handler.HandleRegister(context.Background(), &RegisterInput{
				Credentials: c,
				ID:          event.ID,
			})
			if err != nil {
				t.Errorf("unexpected registration error: %v", err)
				return
			}

			mu.Lock()
			defer mu.Unlock()
			if resp.Body.Waitlisted {
				waitlisted++
			} else {
				registered++
			}
		}(creds[i])
	}
	wg.Wait()

	assert.Equal(t, 5, registered, "exactly capacity registrations succeed")
	assert.Equal(t, 15, waitlisted, "the rest are waitlisted")
	require.Equal(t, 5, attendeeCount(db, event.ID), "attendee set never exceeds capacity")

	var ledger int64
	db.Model(&models.EventRegistration{}).Where("event_id = ?", event.ID).Count(&ledger)
	assert.Equal(t, int64(20), ledger)
}
