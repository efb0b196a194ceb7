package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewFromCreateRequest builds an Event from a validated create payload.
// The date must already be parsed, createdBy is the acting admin's email.
func NewFromCreateRequest(req CreateEventRequest, date time.Time, createdBy string) Event {
	now := time.Now().UTC()

	var image *string

	if req.Image != "" {
		img := req.Image
		image = &img
	}

	tags := req.Tags

	if tags == nil {
		tags = []string{}
	}

	return Event{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		Venue:       strings.TrimSpace(req.Venue),
		Capacity:    req.Capacity,
		Registered:  0,
		Category:    req.Category,
		Image:       image,
		Tags:        tags,
		Status:      StatusUpcoming,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
