package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eventsphere/server/internal/domain/event"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventsRepo struct {
	pool *pgxpool.Pool
}

// constructor function

func NewEventsRepo(pool *pgxpool.Pool) *EventsRepo {
	return &EventsRepo{
		pool: pool,
	}
}

const eventColumns = `id, title, description, date, venue, capacity, registered, category, image, tags, status, created_by, created_at, updated_at`

func scanEvent(row pgx.Row) (event.Event, error) {
	var e event.Event

	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Venue, &e.Capacity, &e.Registered, &e.Category, &e.Image, &e.Tags, &e.Status, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)

	return e, err
}

func (r *EventsRepo) Create(ctx context.Context, e event.Event) (event.Event, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		e.ID, e.Title, e.Description, e.Date, e.Venue, e.Capacity, e.Registered, e.Category, e.Image, e.Tags, e.Status, e.CreatedBy, e.CreatedAt, e.UpdatedAt)

	if err != nil {
		return event.Event{}, err
	}

	return e, nil
}

func (r *EventsRepo) List(ctx context.Context, filter event.ListFilter) ([]event.Event, int, error) {
	baseQuery := `SELECT ` + eventColumns + `, COUNT(*) OVER() AS total FROM events`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Category != nil {
		conds = append(conds, fmt.Sprintf("category = $%d", argsPosition))
		args = append(args, *filter.Category)
		argsPosition++
	}

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argsPosition))
		args = append(args, *filter.Status)
		argsPosition++
	}

	if filter.Search != nil {
		conds = append(conds, fmt.Sprintf(`(title ILIKE $%d ESCAPE '\' OR description ILIKE $%d ESCAPE '\' OR venue ILIKE $%d ESCAPE '\')`, argsPosition, argsPosition, argsPosition))
		args = append(args, "%"+escapeLike(*filter.Search)+"%")
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY date ASC, id ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	output := make([]event.Event, 0, filter.Limit)
	total := 0

	for rows.Next() {
		var e event.Event
		var t int

		err = rows.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Venue, &e.Capacity, &e.Registered, &e.Category, &e.Image, &e.Tags, &e.Status, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt, &t)

		if err != nil {
			return nil, 0, err
		}

		total = t
		output = append(output, e)
	}

	err = rows.Err()

	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}

		return event.Event{}, err
	}

	return e, nil
}

// Update applies a partial field set; only the allow-listed fields the
// caller provided are touched. The date must already be parsed when set.
func (r *EventsRepo) Update(ctx context.Context, id string, req event.UpdateEventRequest, date *time.Time) (event.Event, error) {
	var sets []string
	var args []interface{}

	// $1 is the id
	args = append(args, id)
	pos := 2

	set := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, pos))
		args = append(args, value)
		pos++
	}

	if req.Title != nil {
		set("title", strings.TrimSpace(*req.Title))
	}

	if req.Description != nil {
		set("description", strings.TrimSpace(*req.Description))
	}

	if date != nil {
		set("date", *date)
	}

	if req.Venue != nil {
		set("venue", strings.TrimSpace(*req.Venue))
	}

	if req.Capacity != nil {
		set("capacity", *req.Capacity)
	}

	if req.Category != nil {
		set("category", *req.Category)
	}

	if req.Image != nil {
		set("image", *req.Image)
	}

	if req.Tags != nil {
		set("tags", *req.Tags)
	}

	if req.Status != nil {
		set("status", *req.Status)
	}

	sets = append(sets, "updated_at = NOW()")

	query := `UPDATE events SET ` + strings.Join(sets, ", ") + `
		WHERE id = $1
		RETURNING ` + eventColumns

	e, err := scanEvent(r.pool.QueryRow(ctx, query, args...))

	if err != nil {
		// if there are no rows matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}
		// if it is any other type of error
		return event.Event{}, err
	}

	return e, nil
}

// Delete removes the event and its registrations in one transaction,
// registrations first so there is never a deleted-but-registrable window.
func (r *EventsRepo) Delete(ctx context.Context, id string) (removedRegs int64, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return 0, err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	regTag, err := tx.Exec(ctx, `DELETE FROM registrations WHERE event_id = $1`, id)

	if err != nil {
		return 0, err
	}

	evTag, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)

	if err != nil {
		return 0, err
	}

	// if no rows were deleted as a result return a not found error
	if evTag.RowsAffected() == 0 {
		return 0, event.ErrNotFound
	}

	err = tx.Commit(ctx)

	if err != nil {
		return 0, err
	}

	return regTag.RowsAffected(), nil
}
