package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/eventsphere/server/internal/cache"
	"github.com/eventsphere/server/internal/config"
	"github.com/eventsphere/server/internal/domain/event"
	"github.com/eventsphere/server/internal/http/middlewares"
	"github.com/eventsphere/server/internal/utils"
	"github.com/gin-gonic/gin"
)

type EventsStore interface {
	Create(ctx context.Context, e event.Event) (event.Event, error)
	GetByID(ctx context.Context, id string) (event.Event, error)
	List(ctx context.Context, filter event.ListFilter) ([]event.Event, int, error)
	Update(ctx context.Context, id string, req event.UpdateEventRequest, date *time.Time) (event.Event, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type RegistrationCounter interface {
	CountForEvent(ctx context.Context, eventID string) (int, error)
}

type EventsHandler struct {
	repo  EventsStore
	regs  RegistrationCounter
	cache cache.Store
	log   *slog.Logger
}

func NewEventsHandler(repo EventsStore, regs RegistrationCounter, store cache.Store, log *slog.Logger) *EventsHandler {
	return &EventsHandler{
		repo:  repo,
		regs:  regs,
		cache: store,
		log:   log,
	}
}

type eventListResponse struct {
	Events []event.Event `json:"events"`
	Total  int           `json:"total"`
	Page   int           `json:"page"`
	Pages  int           `json:"pages"`
}

const (
	defaultEventsPageSize = 20
	maxEventsPageSize     = 100
)

// ListEvents is the public listing: category/status filters, free-text
// search, clamped pagination, date-ascending order.
func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	category := ctx.Query("category")
	status := ctx.Query("status")
	search := ctx.Query("search")
	page := parsePositiveInt(ctx.Query("page"), 1)
	limit := parsePageSize(ctx.Query("limit"), defaultEventsPageSize, maxEventsPageSize)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	key := utils.BuildEventsListCacheKey(category, status, search, page, limit)

	if cached, ok := h.cache.Get(cctx, key); ok {
		RespondRawJSONWithETag(ctx, http.StatusOK, cached)
		return
	}

	filter := event.ListFilter{Page: page, Limit: limit}

	// "All" is the no-filter sentinel the UI sends
	if category != "" && category != "All" {
		filter.Category = &category
	}

	if status != "" {
		filter.Status = &status
	}

	if search != "" {
		filter.Search = &search
	}

	events, total, err := h.repo.List(cctx, filter)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "event listing failed", "err", err)
		RespondInternal(ctx)
		return
	}

	resp := eventListResponse{
		Events: events,
		Total:  total,
		Page:   page,
		Pages:  (total + limit - 1) / limit,
	}

	body, err := json.Marshal(resp)

	if err != nil {
		RespondInternal(ctx)
		return
	}

	h.cache.Set(cctx, key, body)

	RespondRawJSONWithETag(ctx, http.StatusOK, body)
}

type eventWithCount struct {
	event.Event
	RegistrationCount int `json:"registrationCount"`
}

func (h *EventsHandler) GetEventByID(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	e, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "event fetch failed", "err", err)
		RespondInternal(ctx)
		return
	}

	count, err := h.regs.CountForEvent(cctx, id)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "registration count failed", "err", err)
		RespondInternal(ctx)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, eventWithCount{Event: e, RegistrationCount: count})
}

func (h *EventsHandler) CreateEvent(ctx *gin.Context) {
	var req event.CreateEventRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(ctx, "Invalid request body")
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		RespondValidationErrors(ctx, errs)
		return
	}

	date, err := event.ParseDate(req.Date)

	if err != nil {
		RespondValidationErrors(ctx, []string{"Date must be a valid ISO date string"})
		return
	}

	createdBy, _ := middlewares.AdminEmailFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, event.NewFromCreateRequest(req, date, createdBy))

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "event creation failed", "err", err)
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully",
		"event":   created,
	})
}

func (h *EventsHandler) UpdateEvent(ctx *gin.Context) {
	id := ctx.Param("id")

	var req event.UpdateEventRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(ctx, "Invalid request body")
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		RespondValidationErrors(ctx, errs)
		return
	}

	var date *time.Time

	if req.Date != nil {
		parsed, err := event.ParseDate(*req.Date)

		if err != nil {
			RespondValidationErrors(ctx, []string{"Date must be a valid ISO date string"})
			return
		}

		date = &parsed
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.repo.Update(cctx, id, req, date)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "event update failed", "err", err)
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully",
		"event":   updated,
	})
}

func (h *EventsHandler) DeleteEvent(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	removedRegs, err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "event deletion failed", "err", err)
		RespondInternal(ctx)
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "event deleted",
		"event_id", id,
		"cascaded_registrations", removedRegs,
	)

	ctx.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

// query-string helpers shared by the list endpoints

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)

	if err != nil || n < 1 {
		return fallback
	}

	return n
}

// parsePageSize honors any explicit numeric limit, clamped to [1, max];
// only an absent or non-numeric value falls back to the default.
func parsePageSize(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)

	if err != nil {
		return fallback
	}

	return clamp(n, 1, max)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}

	if n > hi {
		return hi
	}

	return n
}
