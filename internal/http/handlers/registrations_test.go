package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eventsphere/server/internal/domain/event"
	"github.com/eventsphere/server/internal/domain/registration"
	"github.com/eventsphere/server/internal/http/handlers"
	"github.com/eventsphere/server/internal/repo/postgres"
)

type fakeRegistrationsRepo struct {
	createFn      func(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error)
	listByEventFn func(ctx context.Context, eventID string) ([]registration.Registration, error)
	listFn        func(ctx context.Context, filter postgres.RegistrationsFilter) ([]registration.Registration, int, error)
}

func (f *fakeRegistrationsRepo) Create(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}

	return registration.Registration{}, nil
}

func (f *fakeRegistrationsRepo) ListByEvent(ctx context.Context, eventID string) ([]registration.Registration, error) {
	if f.listByEventFn != nil {
		return f.listByEventFn(ctx, eventID)
	}

	return nil, nil
}

func (f *fakeRegistrationsRepo) List(ctx context.Context, filter postgres.RegistrationsFilter) ([]registration.Registration, int, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}

	return nil, 0, nil
}

const validRegistrationBody = `{
	"name": "Jane Doe",
	"email": "jane@campus.edu",
	"phone": "9876543210",
	"department": "CSE",
	"year": "3",
	"rollNumber": "CS-2023-042"
}`

func openEvent(id string) event.Event {
	return event.Event{
		ID:         id,
		Title:      "Tech Talk",
		Date:       time.Now().UTC().Add(24 * time.Hour),
		Capacity:   50,
		Registered: 10,
		Status:     event.StatusUpcoming,
	}
}

func TestRegisterHandler(t *testing.T) {
	eventID := newUUID()

	tests := []struct {
		name           string
		body           string
		eventSetup     func(*fakeEventsRepo)
		repoSetup      func(*fakeRegistrationsRepo)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "success",
			body: validRegistrationBody,
			eventSetup: func(f *fakeEventsRepo) {
				f.getFn = func(ctx context.Context, id string) (event.Event, error) {
					return openEvent(id), nil
				}
			},
			repoSetup: func(f *fakeRegistrationsRepo) {
				f.createFn = func(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error) {
					if req.EventID != eventID {
						return registration.Registration{}, errors.New("event id not carried over from the URL")
					}

					if req.Email != "jane@campus.edu" {
						return registration.Registration{}, errors.New("email not normalized")
					}

					return registration.NewFromCreateRequest(req, "Tech Talk"), nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "event_not_found",
			body: validRegistrationBody,
			eventSetup: func(f *fakeEventsRepo) {
				f.getFn = func(ctx context.Context, id string) (event.Event, error) {
					return event.Event{}, event.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "Event not found",
		},
		{
			name: "event_cancelled",
			body: validRegistrationBody,
			eventSetup: func(f *fakeEventsRepo) {
				f.getFn = func(ctx context.Context, id string) (event.Event, error) {
					e := openEvent(id)
					e.Status = event.StatusCancelled
					return e, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Event is cancelled",
		},
		{
			name: "event_full",
			body: validRegistrationBody,
			eventSetup: func(f *fakeEventsRepo) {
				f.getFn = func(ctx context.Context, id string) (event.Event, error) {
					e := openEvent(id)
					e.Registered = e.Capacity
					return e, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Event is at full capacity",
		},
		{
			name: "duplicate",
			body: validRegistrationBody,
			eventSetup: func(f *fakeEventsRepo) {
				f.getFn = func(ctx context.Context, id string) (event.Event, error) {
					return openEvent(id), nil
				}
			},
			repoSetup: func(f *fakeRegistrationsRepo) {
				f.createFn = func(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error) {
					return registration.Registration{}, registration.ErrAlreadyRegistered
				}
			},
			wantStatusCode: http.StatusConflict,
			wantError:      "You are already registered for this event",
		},
		{
			// the pre-check passed but another request won the last seat
			name: "lost_race_for_last_seat",
			body: validRegistrationBody,
			eventSetup: func(f *fakeEventsRepo) {
				f.getFn = func(ctx context.Context, id string) (event.Event, error) {
					return openEvent(id), nil
				}
			},
			repoSetup: func(f *fakeRegistrationsRepo) {
				f.createFn = func(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error) {
					return registration.Registration{}, registration.ErrEventFull
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Event is at full capacity",
		},
		{
			name: "repo_error",
			body: validRegistrationBody,
			eventSetup: func(f *fakeEventsRepo) {
				f.getFn = func(ctx context.Context, id string) (event.Event, error) {
					return openEvent(id), nil
				}
			},
			repoSetup: func(f *fakeRegistrationsRepo) {
				f.createFn = func(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error) {
					return registration.Registration{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "Internal server error",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			events := &fakeEventsRepo{}
			regs := &fakeRegistrationsRepo{}

			if tt.eventSetup != nil {
				tt.eventSetup(events)
			}

			if tt.repoSetup != nil {
				tt.repoSetup(regs)
			}

			h := handlers.NewRegistrationsHandler(regs, events, nil, testLogger())
			r := setupRouter(http.MethodPost, "/api/events/:id/register", h.Register)

			req := httptest.NewRequest(http.MethodPost, "/api/events/"+eventID+"/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantError != "" {
				var resp struct {
					Error string `json:"error"`
				}

				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v body=%s", err, w.Body.String())
				}

				if resp.Error != tt.wantError {
					t.Fatalf("got error %q, want %q", resp.Error, tt.wantError)
				}
			}
		})
	}
}

func TestRegisterHandler_ValidationListsAllViolations(t *testing.T) {
	events := &fakeEventsRepo{}
	events.getFn = func(ctx context.Context, id string) (event.Event, error) {
		return openEvent(id), nil
	}

	h := handlers.NewRegistrationsHandler(&fakeRegistrationsRepo{}, events, nil, testLogger())
	r := setupRouter(http.MethodPost, "/api/events/:id/register", h.Register)

	body := `{"email": "not-an-email", "phone": "123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/events/"+newUUID()+"/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp struct {
		Errors []string `json:"errors"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v body=%s", err, w.Body.String())
	}

	// name, email, phone, department, year, rollNumber all invalid
	if len(resp.Errors) != 6 {
		t.Fatalf("want 6 validation messages, got %d: %v", len(resp.Errors), resp.Errors)
	}

	joined := strings.Join(resp.Errors, "; ")

	for _, want := range []string{"email must be a valid email address", "phone must be exactly 10 digits", "name is required"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in validation messages: %v", want, resp.Errors)
		}
	}
}

func TestListRegistrationsForEventHandler(t *testing.T) {
	eventID := newUUID()

	events := &fakeEventsRepo{}
	events.getFn = func(ctx context.Context, id string) (event.Event, error) {
		if id != eventID {
			return event.Event{}, event.ErrNotFound
		}

		return openEvent(id), nil
	}

	regs := &fakeRegistrationsRepo{}
	regs.listByEventFn = func(ctx context.Context, id string) ([]registration.Registration, error) {
		return []registration.Registration{
			{ID: newUUID(), EventID: id, Name: "Jane Doe"},
			{ID: newUUID(), EventID: id, Name: "John Roe"},
		}, nil
	}

	h := handlers.NewRegistrationsHandler(regs, events, nil, testLogger())
	r := setupRouter(http.MethodGet, "/api/admin/events/:id/registrations", h.ListForEvent)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/events/"+eventID+"/registrations", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Event struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"event"`
		Registrations []registration.Registration `json:"registrations"`
		Total         int                         `json:"total"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Event.ID != eventID || resp.Event.Title != "Tech Talk" {
		t.Fatalf("unexpected event summary: %+v", resp.Event)
	}

	if resp.Total != 2 || len(resp.Registrations) != 2 {
		t.Fatalf("got total=%d len=%d, want 2", resp.Total, len(resp.Registrations))
	}

	// unknown event id
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/api/admin/events/"+newUUID()+"/registrations", nil)
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want %d", w2.Code, http.StatusNotFound)
	}
}

func TestListAllRegistrationsHandler(t *testing.T) {
	eventID := newUUID()

	regs := &fakeRegistrationsRepo{}
	regs.listFn = func(ctx context.Context, filter postgres.RegistrationsFilter) ([]registration.Registration, int, error) {
		if filter.EventID == nil || *filter.EventID != eventID {
			return nil, 0, errors.New("eventId filter not passed")
		}

		if filter.Search == nil || *filter.Search != "jane" {
			return nil, 0, errors.New("search filter not passed")
		}

		if filter.Page != 1 || filter.Limit != 50 {
			return nil, 0, errors.New("default paging not applied")
		}

		return []registration.Registration{{ID: newUUID(), EventID: eventID}}, 101, nil
	}

	h := handlers.NewRegistrationsHandler(regs, &fakeEventsRepo{}, nil, testLogger())
	r := setupRouter(http.MethodGet, "/api/admin/registrations", h.ListAll)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/registrations?eventId="+eventID+"&search=jane", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Total int `json:"total"`
		Page  int `json:"page"`
		Pages int `json:"pages"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Total != 101 || resp.Page != 1 || resp.Pages != 3 {
		t.Fatalf("unexpected paging: %+v", resp)
	}
}

func TestListAllRegistrationsHandler_LimitZeroClampsToOne(t *testing.T) {
	regs := &fakeRegistrationsRepo{}
	regs.listFn = func(ctx context.Context, filter postgres.RegistrationsFilter) ([]registration.Registration, int, error) {
		if filter.Limit != 1 {
			return nil, 0, errors.New("explicit zero limit must clamp to 1")
		}

		return []registration.Registration{}, 0, nil
	}

	h := handlers.NewRegistrationsHandler(regs, &fakeEventsRepo{}, nil, testLogger())
	r := setupRouter(http.MethodGet, "/api/admin/registrations", h.ListAll)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/registrations?limit=0", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
}
