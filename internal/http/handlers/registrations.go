package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/eventsphere/server/internal/config"
	"github.com/eventsphere/server/internal/domain/event"
	"github.com/eventsphere/server/internal/domain/registration"
	"github.com/eventsphere/server/internal/observability"
	"github.com/eventsphere/server/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type RegistrationsStore interface {
	Create(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]registration.Registration, error)
	List(ctx context.Context, filter postgres.RegistrationsFilter) ([]registration.Registration, int, error)
}

type EventsGetter interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
}

type RegistrationsHandler struct {
	repo   RegistrationsStore
	events EventsGetter
	prom   *observability.Prom
	log    *slog.Logger
}

func NewRegistrationsHandler(repo RegistrationsStore, events EventsGetter, prom *observability.Prom, log *slog.Logger) *RegistrationsHandler {
	return &RegistrationsHandler{
		repo:   repo,
		events: events,
		prom:   prom,
		log:    log,
	}
}

func (h *RegistrationsHandler) countResult(result string) {
	if h.prom != nil {
		h.prom.RegistrationsTotal.WithLabelValues(result).Inc()
	}
}

// Register is the capacity-safe signup path. The checks before the
// storage call are a fast, friendly pre-flight in the order clients
// expect; the storage layer re-verifies all of them atomically, so a
// race between two of these requests can never oversell the event or
// duplicate a registrant.
func (h *RegistrationsHandler) Register(ctx *gin.Context) {
	eventID := ctx.Param("id")

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	ev, err := h.events.GetByID(cctx, eventID)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			h.countResult("not_found")
			RespondNotFound(ctx, "Event not found")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "event fetch failed", "err", err)
		h.countResult("error")
		RespondInternal(ctx)
		return
	}

	if ev.Status == event.StatusCancelled {
		h.countResult("cancelled")
		RespondBadRequest(ctx, "Event is cancelled")
		return
	}

	if ev.Registered >= ev.Capacity {
		h.countResult("full")
		RespondBadRequest(ctx, "Event is at full capacity")
		return
	}

	var req registration.CreateRegistrationRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(ctx, "Invalid request body")
		return
	}

	req.EventID = eventID
	req.Normalize()

	if errs := req.Validate(); len(errs) > 0 {
		RespondValidationErrors(ctx, errs)
		return
	}

	reg, err := h.repo.Create(cctx, req)

	if err != nil {
		switch {
		case errors.Is(err, registration.ErrAlreadyRegistered):
			h.countResult("duplicate")
			RespondConflict(ctx, "You are already registered for this event")
		case errors.Is(err, registration.ErrEventFull):
			h.countResult("full")
			RespondBadRequest(ctx, "Event is at full capacity")
		case errors.Is(err, registration.ErrEventCancelled):
			h.countResult("cancelled")
			RespondBadRequest(ctx, "Event is cancelled")
		case errors.Is(err, event.ErrNotFound):
			h.countResult("not_found")
			RespondNotFound(ctx, "Event not found")
		default:
			h.log.ErrorContext(ctx.Request.Context(), "registration failed", "err", err)
			h.countResult("error")
			RespondInternal(ctx)
		}
		return
	}

	h.countResult("created")

	ctx.JSON(http.StatusCreated, gin.H{
		"message":      "Registration successful!",
		"registration": reg,
	})
}

// ListForEvent is the admin per-event view.
func (h *RegistrationsHandler) ListForEvent(ctx *gin.Context) {
	eventID := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	ev, err := h.events.GetByID(cctx, eventID)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "event fetch failed", "err", err)
		RespondInternal(ctx)
		return
	}

	regs, err := h.repo.ListByEvent(cctx, eventID)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "registration listing failed", "err", err)
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"event": gin.H{
			"id":    ev.ID,
			"title": ev.Title,
		},
		"registrations": regs,
		"total":         len(regs),
	})
}

const (
	defaultRegistrationsPageSize = 50
	maxRegistrationsPageSize     = 200
)

// ListAll is the admin dashboard overview across events.
func (h *RegistrationsHandler) ListAll(ctx *gin.Context) {
	eventID := ctx.Query("eventId")
	search := ctx.Query("search")
	page := parsePositiveInt(ctx.Query("page"), 1)
	limit := parsePageSize(ctx.Query("limit"), defaultRegistrationsPageSize, maxRegistrationsPageSize)

	filter := postgres.RegistrationsFilter{Page: page, Limit: limit}

	if eventID != "" {
		filter.EventID = &eventID
	}

	if search != "" {
		filter.Search = &search
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	regs, total, err := h.repo.List(cctx, filter)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "registration listing failed", "err", err)
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"registrations": regs,
		"total":         total,
		"page":          page,
		"pages":         (total + limit - 1) / limit,
	})
}
