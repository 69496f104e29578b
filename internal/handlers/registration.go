package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherhub/gather-api/internal/auth"
	"github.com/gatherhub/gather-api/internal/models"
	"github.com/gatherhub/gather-api/internal/notifier"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Sentinel errors raised inside the registration transaction and mapped to
// HTTP statuses by the handlers.
var (
	errEventNotFound     = errors.New("event not found")
	errAlreadyRegistered = errors.New("already registered")
	errOrganizerRegister = errors.New("organizer cannot register for own event")
	errNotRegistered     = errors.New("not registered")
)

type RegistrationHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	notifier    notifier.Notifier
	logger      zerolog.Logger
}

func NewRegistrationHandler(db *gorm.DB, authHandler *auth.AuthHandler, n notifier.Notifier, logger zerolog.Logger) *RegistrationHandler {
	return &RegistrationHandler{db: db, authHandler: authHandler, notifier: n, logger: logger}
}

type RegisterInput struct {
	auth.Credentials
	ID uint `path:"id" doc:"Event ID"`
}

type RegisterOutput struct {
	Status int
	Body   struct {
		Detail     string `json:"detail"`
		Waitlisted bool   `json:"waitlisted"`
	}
}

// HandleRegister runs the register transition for (user, event). The
// capacity check, the registration insert, and the attendee append all run
// inside one transaction so a crash cannot leave the ledger and the
// attendee set out of step, and concurrent requests cannot both take the
// last slot.
func (h *RegistrationHandler) HandleRegister(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	waitlisted := false
	var event models.Event
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&event, input.ID).Error; err != nil {
			return errEventNotFound
		}
		if event.OrganizerID == user.ID {
			return errOrganizerRegister
		}

		var registration models.EventRegistration
		err := tx.Where("user_id = ? AND event_id = ?", user.ID, event.ID).
			First(&registration).Error
		switch {
		case err == nil && registration.IsActive:
			return errAlreadyRegistered
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		var count int64
		if err := tx.Table("event_attendees").Where("event_id = ?", event.ID).Count(&count).Error; err != nil {
			return err
		}

		waitlisted = event.IsFull(int(count))

		// Re-registration reactivates the existing ledger row; the
		// (user, event) pair is unique and rows are never deleted.
		registration.UserID = user.ID
		registration.EventID = event.ID
		registration.RegisteredAt = time.Now()
		registration.IsWaitlisted = waitlisted
		registration.IsActive = true
		if err := tx.Save(&registration).Error; err != nil {
			return err
		}

		if waitlisted {
			return nil
		}
		return tx.Model(&event).Association("Attendees").Append(user)
	})

	if err != nil {
		switch {
		case errors.Is(err, errEventNotFound):
			return nil, huma.Error404NotFound("Event not found")
		case errors.Is(err, errAlreadyRegistered):
			return nil, huma.Error400BadRequest("You are already registered for this event")
		case errors.Is(err, errOrganizerRegister):
			return nil, huma.Error400BadRequest("Organizers cannot register for their own event")
		default:
			return nil, huma.Error500InternalServerError("Failed to process registration")
		}
	}

	if err := h.notifier.NotifyRegistration(ctx, *user, event, waitlisted); err != nil {
		h.logger.Warn().Err(err).Uint("event_id", event.ID).Msg("registration notification failed")
	}

	res := &RegisterOutput{}
	if waitlisted {
		res.Status = 202
		res.Body.Detail = "Event is full. You have been added to the waitlist."
		res.Body.Waitlisted = true
	} else {
		res.Status = 201
		res.Body.Detail = "Successfully registered for the event."
	}
	return res, nil
}

type UnregisterInput struct {
	auth.Credentials
	ID uint `path:"id" doc:"Event ID"`
}

type UnregisterOutput struct {
	Body struct {
		Detail string `json:"detail"`
	}
}

// HandleUnregister removes the caller from the attendee set and
// deactivates the ledger row. The freed slot stays open; waitlisted
// registrations are not promoted.
func (h *RegistrationHandler) HandleUnregister(ctx context.Context, input *UnregisterInput) (*UnregisterOutput, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, input.ID).Error; err != nil {
			return errEventNotFound
		}

		var registration models.EventRegistration
		err := tx.Where("user_id = ? AND event_id = ? AND is_active = ? AND is_waitlisted = ?",
			user.ID, event.ID, true, false).
			First(&registration).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotRegistered
			}
			return err
		}

		registration.IsActive = false
		if err := tx.Save(&registration).Error; err != nil {
			return err
		}
		return tx.Model(&event).Association("Attendees").Delete(user)
	})

	if err != nil {
		switch {
		case errors.Is(err, errEventNotFound):
			return nil, huma.Error404NotFound("Event not found")
		case errors.Is(err, errNotRegistered):
			return nil, huma.Error400BadRequest("You are not registered for this event")
		default:
			return nil, huma.Error500InternalServerError("Failed to process unregistration")
		}
	}

	res := &UnregisterOutput{}
	res.Body.Detail = "Successfully unregistered from the event."
	return res, nil
}
