package registration

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Registration struct {
	ID           string    `json:"id"`
	EventID      string    `json:"eventId"`
	EventTitle   string    `json:"eventTitle"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Department   string    `json:"department"`
	Year         string    `json:"year"`
	RollNumber   string    `json:"rollNumber"`
	TicketID     string    `json:"ticketId"`
	RegisteredAt time.Time `json:"registeredAt"`
}

var (
	ErrAlreadyRegistered = errors.New("registration already exists")
	ErrEventFull         = errors.New("event is full")
	ErrEventCancelled    = errors.New("event is cancelled")
	ErrNotFound          = errors.New("registration not found")
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[0-9]{10}$`)
)

type CreateRegistrationRequest struct {
	EventID    string `json:"-"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Year       string `json:"year"`
	RollNumber string `json:"rollNumber"`
}

// Normalize trims every field and lowercases the email. The lowercased
// email is what the (event_id, email) uniqueness constraint keys on.
func (req *CreateRegistrationRequest) Normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.Department = strings.TrimSpace(req.Department)
	req.Year = strings.TrimSpace(req.Year)
	req.RollNumber = strings.TrimSpace(req.RollNumber)
}

// Validate reports every violation, not just the first one.
func (req CreateRegistrationRequest) Validate() []string {
	var errs []string

	if req.Name == "" {
		errs = append(errs, "name is required")
	}

	if req.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailRe.MatchString(req.Email) {
		errs = append(errs, "email must be a valid email address")
	}

	if req.Phone == "" {
		errs = append(errs, "phone is required")
	} else if !phoneRe.MatchString(req.Phone) {
		errs = append(errs, "phone must be exactly 10 digits")
	}

	if req.Department == "" {
		errs = append(errs, "department is required")
	}

	if req.Year == "" {
		errs = append(errs, "year is required")
	}

	if req.RollNumber == "" {
		errs = append(errs, "rollNumber is required")
	}

	return errs
}

// A factory to build a Registration from the incoming DTO. The event title
// is copied as a snapshot and is deliberately never refreshed on later edits.
func NewFromCreateRequest(req CreateRegistrationRequest, eventTitle string) Registration {
	return Registration{
		ID:           uuid.NewString(),
		EventID:      req.EventID,
		EventTitle:   eventTitle,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Department:   req.Department,
		Year:         req.Year,
		RollNumber:   req.RollNumber,
		TicketID:     NewTicketID(),
		RegisteredAt: time.Now().UTC(),
	}
}

// NewTicketID returns a short display token like TKT-9F2C41AB.
func NewTicketID() string {
	raw := uuid.NewString()

	return "TKT-" + strings.ToUpper(raw[:8])
}
