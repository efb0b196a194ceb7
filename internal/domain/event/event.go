package event

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusUpcoming  = "upcoming"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Venue       string    `json:"venue"`
	Capacity    int       `json:"capacity"`
	Registered  int       `json:"registered"`
	Category    string    `json:"category"`
	Image       *string   `json:"image"`
	Tags        []string  `json:"tags"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// with pointers if optional, it will be nil
type ListFilter struct {
	Category *string
	Status   *string
	Search   *string
	Page     int
	Limit    int
}

var ErrNotFound = errors.New("event not found")

type CreateEventRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Venue       string   `json:"venue"`
	Capacity    int      `json:"capacity"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags"`
}

// a partial update payload, nil fields are left untouched
type UpdateEventRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Date        *string   `json:"date"`
	Venue       *string   `json:"venue"`
	Capacity    *int      `json:"capacity"`
	Category    *string   `json:"category"`
	Image       *string   `json:"image"`
	Tags        *[]string `json:"tags"`
	Status      *string   `json:"status"`
}

// accepted on input; dates are stored and rendered in UTC
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)

		if err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, errors.New("invalid date")
}

func IsValidStatus(s string) bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}

	return false
}

func (req CreateEventRequest) Validate() []string {
	var errs []string

	if len(strings.TrimSpace(req.Title)) < 3 {
		errs = append(errs, "Title must be at least 3 characters")
	}

	if len(strings.TrimSpace(req.Description)) < 10 {
		errs = append(errs, "Description must be at least 10 characters")
	}

	if strings.TrimSpace(req.Date) == "" {
		errs = append(errs, "Date is required")
	} else if _, err := ParseDate(req.Date); err != nil {
		errs = append(errs, "Date must be a valid ISO date string")
	}

	if len(strings.TrimSpace(req.Venue)) < 2 {
		errs = append(errs, "Venue is required")
	}

	if req.Capacity < 1 {
		errs = append(errs, "Capacity must be a positive number")
	}

	if strings.TrimSpace(req.Category) == "" {
		errs = append(errs, "Category is required")
	}

	return errs
}

func (req UpdateEventRequest) Validate() []string {
	var errs []string

	if req.Title != nil && len(strings.TrimSpace(*req.Title)) < 3 {
		errs = append(errs, "Title must be at least 3 characters")
	}

	if req.Description != nil && len(strings.TrimSpace(*req.Description)) < 10 {
		errs = append(errs, "Description must be at least 10 characters")
	}

	if req.Date != nil {
		if _, err := ParseDate(*req.Date); err != nil {
			errs = append(errs, "Date must be a valid ISO date string")
		}
	}

	if req.Venue != nil && len(strings.TrimSpace(*req.Venue)) < 2 {
		errs = append(errs, "Venue is required")
	}

	if req.Capacity != nil && *req.Capacity < 1 {
		errs = append(errs, "Capacity must be a positive number")
	}

	if req.Category != nil && strings.TrimSpace(*req.Category) == "" {
		errs = append(errs, "Category is required")
	}

	if req.Status != nil && !IsValidStatus(*req.Status) {
		errs = append(errs, "Status must be one of upcoming, ongoing, completed, cancelled")
	}

	return errs
}
