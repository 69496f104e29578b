package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherhub/gather-api/internal/auth"
	"github.com/gatherhub/gather-api/internal/config"
	"github.com/gatherhub/gather-api/internal/models"
	"gorm.io/gorm"
)

type EventHandler struct {
	db          *gorm.DB
	cfg         *config.Config
	authHandler *auth.AuthHandler
}

func NewEventHandler(db *gorm.DB, cfg *config.Config, authHandler *auth.AuthHandler) *EventHandler {
	return &EventHandler{db: db, cfg: cfg, authHandler: authHandler}
}

type EventResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	DateTime       time.Time `json:"date_time"`
	Location       string    `json:"location"`
	Capacity       int       `json:"capacity"`
	Organizer      string    `json:"organizer"`
	AttendeeCount  int       `json:"attendee_count"`
	AvailableSlots int       `json:"available_slots"`
	IsFull         bool      `json:"is_full"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var eventOrderings = map[string]string{
	"date_time":  "events.date_time",
	"created_at": "events.created_at",
	"title":      "events.title",
}

type ListEventsInput struct {
	Upcoming       string    `query:"upcoming" required:"false" enum:"true,false" doc:"Only events that have not started yet"`
	Organizer      string    `query:"organizer" required:"false" doc:"Organizer username"`
	Search         string    `query:"search" required:"false" doc:"Search over title, description, location"`
	DateTimeAfter  time.Time `query:"date_time_after" required:"false"`
	DateTimeBefore time.Time `query:"date_time_before" required:"false"`
	CapacityMin    int       `query:"capacity_min" required:"false"`
	CapacityMax    int       `query:"capacity_max" required:"false"`
	Ordering       string    `query:"ordering" required:"false" doc:"date_time, created_at, title; prefix with - for descending"`
	PageInput
}

type ListEventsOutput struct {
	Body Page[EventResponse]
}

func (h *EventHandler) HandleList(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	// LEFT JOIN so events survive in the list when their organizer row has
	// been soft-deleted, matching the detail endpoint.
	query := h.db.Model(&models.Event{}).
		Joins("LEFT JOIN users ON users.id = events.organizer_id AND users.deleted_at IS NULL").
		Preload("Organizer")

	if input.Upcoming == "true" {
		query = query.Where("events.date_time >= ?", time.Now())
	}
	if input.Organizer != "" {
		query = query.Where("users.username = ?", input.Organizer)
	}
	if input.Search != "" {
		pattern := likeContains(input.Search)
		query = query.Where(
			"LOWER(events.title) LIKE ? OR LOWER(events.description) LIKE ? OR LOWER(events.location) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if !input.DateTimeAfter.IsZero() {
		query = query.Where("events.date_time >= ?", input.DateTimeAfter)
	}
	if !input.DateTimeBefore.IsZero() {
		query = query.Where("events.date_time <= ?", input.DateTimeBefore)
	}
	if input.CapacityMin > 0 {
		query = query.Where("events.capacity >= ?", input.CapacityMin)
	}
	if input.CapacityMax > 0 {
		query = query.Where("events.capacity <= ?", input.CapacityMax)
	}

	order := ordering(input.Ordering, "events.date_time", eventOrderings)
	page, err := paginate[models.Event](query, h.cfg, input.PageInput, order)
	if err != nil {
		return nil, err
	}

	out := Page[EventResponse]{Count: page.Count, Page: page.Page, PageSize: page.PageSize, Results: []EventResponse{}}
	for i := range page.Results {
		out.Results = append(out.Results, h.newEventResponse(&page.Results[i]))
	}
	return &ListEventsOutput{Body: out}, nil
}

type CreateEventInput struct {
	auth.Credentials
	Body struct {
		Title       string    `json:"title" minLength:"1" maxLength:"200"`
		Description string    `json:"description"`
		DateTime    time.Time `json:"date_time"`
		Location    string    `json:"location" minLength:"1" maxLength:"200"`
		Capacity    int       `json:"capacity" minimum:"1" doc:"Maximum number of attendees"`
	}
}

type EventOutput struct {
	Status int
	Body   EventResponse
}

func (h *EventHandler) HandleCreate(ctx context.Context, input *CreateEventInput) (*EventOutput, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	event := models.Event{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		DateTime:    input.Body.DateTime,
		Location:    input.Body.Location,
		Capacity:    input.Body.Capacity,
		OrganizerID: user.ID,
	}
	if err := event.Validate(time.Now(), true); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if err := h.db.Create(&event).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create event")
	}
	event.Organizer = *user

	return &EventOutput{Status: 201, Body: h.newEventResponse(&event)}, nil
}

type GetEventInput struct {
	auth.Credentials
	ID uint `path:"id"`
}

func (h *EventHandler) HandleGet(ctx context.Context, input *GetEventInput) (*EventOutput, error) {
	if _, err := h.authHandler.Authorize(input.Credentials); err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.Preload("Organizer").First(&event, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}
	return &EventOutput{Status: 200, Body: h.newEventResponse(&event)}, nil
}

type UpdateEventInput struct {
	auth.Credentials
	ID   uint `path:"id"`
	Body struct {
		Title       string     `json:"title,omitempty" required:"false" maxLength:"200"`
		Description *string    `json:"description,omitempty" required:"false"`
		DateTime    *time.Time `json:"date_time,omitempty" required:"false"`
		Location    string     `json:"location,omitempty" required:"false" maxLength:"200"`
		Capacity    *int       `json:"capacity,omitempty" required:"false"`
	}
}

func (h *EventHandler) HandleUpdate(ctx context.Context, input *UpdateEventInput) (*EventOutput, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.Preload("Organizer").First(&event, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}
	if event.OrganizerID != user.ID {
		return nil, huma.Error403Forbidden("You do not have permission to edit this event")
	}

	dateChanged := false
	if input.Body.Title != "" {
		event.Title = input.Body.Title
	}
	if input.Body.Description != nil {
		event.Description = *input.Body.Description
	}
	if input.Body.DateTime != nil && !input.Body.DateTime.Equal(event.DateTime) {
		event.DateTime = *input.Body.DateTime
		dateChanged = true
	}
	if input.Body.Location != "" {
		event.Location = input.Body.Location
	}
	if input.Body.Capacity != nil {
		event.Capacity = *input.Body.Capacity
	}

	if err := event.Validate(time.Now(), dateChanged); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if err := h.db.Save(&event).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update event")
	}

	return &EventOutput{Status: 200, Body: h.newEventResponse(&event)}, nil
}

type DeleteEventInput struct {
	auth.Credentials
	ID uint `path:"id"`
}

func (h *EventHandler) HandleDelete(ctx context.Context, input *DeleteEventInput) (*struct{}, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.First(&event, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}
	if event.OrganizerID != user.ID {
		return nil, huma.Error403Forbidden("You do not have permission to delete this event")
	}
	if err := h.db.Delete(&event).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete event")
	}
	return nil, nil
}

type MyEventsInput struct {
	auth.Credentials
	Type string `query:"type" required:"false" enum:"attending,organized" doc:"attending (default) or organized"`
}

type MyEventsOutput struct {
	Body []EventResponse
}

func (h *EventHandler) HandleMyEvents(ctx context.Context, input *MyEventsInput) (*MyEventsOutput, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	var events []models.Event
	if input.Type == "organized" {
		err = h.db.Preload("Organizer").
			Where("organizer_id = ?", user.ID).
			Order("date_time").
			Find(&events).Error
	} else {
		err = h.db.Preload("Organizer").
			Joins("JOIN event_attendees ON event_attendees.event_id = events.id").
			Where("event_attendees.user_id = ?", user.ID).
			Order("events.date_time").
			Find(&events).Error
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to fetch events")
	}

	return &MyEventsOutput{Body: h.newEventResponses(events)}, nil
}

type RegisteredEventsInput struct {
	auth.Credentials
}

// HandleRegisteredEvents lists events the caller holds an active
// registration for, waitlisted or not.
func (h *EventHandler) HandleRegisteredEvents(ctx context.Context, input *RegisteredEventsInput) (*MyEventsOutput, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	var events []models.Event
	err = h.db.Preload("Organizer").
		Joins("JOIN event_registrations ON event_registrations.event_id = events.id").
		Where("event_registrations.user_id = ? AND event_registrations.is_active = ?", user.ID, true).
		Order("events.date_time").
		Find(&events).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to fetch events")
	}

	return &MyEventsOutput{Body: h.newEventResponses(events)}, nil
}

func (h *EventHandler) newEventResponses(events []models.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, h.newEventResponse(&events[i]))
	}
	return out
}

func (h *EventHandler) newEventResponse(event *models.Event) EventResponse {
	count := attendeeCount(h.db, event.ID)
	return EventResponse{
		ID:             event.ID,
		Title:          event.Title,
		Description:    event.Description,
		DateTime:       event.DateTime,
		Location:       event.Location,
		Capacity:       event.Capacity,
		Organizer:      event.Organizer.Username,
		AttendeeCount:  count,
		AvailableSlots: event.AvailableSlots(count),
		IsFull:         event.IsFull(count),
		CreatedAt:      event.CreatedAt,
		UpdatedAt:      event.UpdatedAt,
	}
}

// attendeeCount counts rows in the attendee join table for one event.
func attendeeCount(db *gorm.DB, eventID uint) int {
	var count int64
	db.Table("event_attendees").Where("event_id = ?", eventID).Count(&count)
	return int(count)
}
