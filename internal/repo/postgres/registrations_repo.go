package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eventsphere/server/internal/domain/event"
	"github.com/eventsphere/server/internal/domain/registration"
	"github.com/eventsphere/server/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistrationsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRegistrationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RegistrationsRepo {
	return &RegistrationsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *RegistrationsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

type RegistrationsFilter struct {
	EventID *string
	Search  *string
	Page    int
	Limit   int
}

// Create inserts a registration and bumps the event counter as one unit.
// The conditional UPDATE is the authoritative capacity and cancellation
// guard: the increment only lands while registered < capacity, so the
// counter can never pass capacity no matter how many requests race. The
// unique index on (event_id, lower(email)) closes the duplicate race the
// same way; a violation rolls the increment back with the transaction.
func (repo *RegistrationsRepo) Create(ctx context.Context, req registration.CreateRegistrationRequest) (reg registration.Registration, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// friendly duplicate check first so the common retry case never
	// touches the counter
	var exists bool

	err = repo.observe("registrations.create.duplicate_check", func() error {
		return tx.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM registrations
			WHERE event_id = $1 AND email = $2
		)`, req.EventID, req.Email).Scan(&exists)
	})

	if err != nil {
		return
	}

	if exists {
		err = registration.ErrAlreadyRegistered
		return
	}

	var eventTitle string

	err = repo.observe("registrations.create.increment", func() error {
		return tx.QueryRow(ctx, `
			UPDATE events
			SET registered = registered + 1,
			    updated_at = NOW()
			WHERE id = $1
			  AND status <> 'cancelled'
			  AND registered < capacity
			RETURNING title
		`, req.EventID).Scan(&eventTitle)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = repo.diagnoseRejectedIncrement(ctx, tx, req.EventID)
		}

		return
	}

	reg = registration.NewFromCreateRequest(req, eventTitle)

	err = repo.observe("registrations.create.insert", func() error {
		_, e := tx.Exec(ctx, `
			INSERT INTO registrations (id, event_id, event_title, name, email, phone, department, year, roll_number, ticket_id, registered_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`, reg.ID, reg.EventID, reg.EventTitle, reg.Name, reg.Email, reg.Phone, reg.Department, reg.Year, reg.RollNumber, reg.TicketID, reg.RegisteredAt)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "registrations_event_email_uniq" {
			err = registration.ErrAlreadyRegistered
		}

		reg = registration.Registration{}
		return
	}

	err = tx.Commit(ctx)

	if err != nil {
		reg = registration.Registration{}
		return
	}

	return
}

// The conditional update matched no row; work out which invariant stopped it.
func (repo *RegistrationsRepo) diagnoseRejectedIncrement(ctx context.Context, tx pgx.Tx, eventID string) error {
	var status string
	var registered, capacity int

	err := tx.QueryRow(ctx,
		`SELECT status, registered, capacity FROM events WHERE id = $1`,
		eventID,
	).Scan(&status, &registered, &capacity)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.ErrNotFound
		}

		return err
	}

	if status == event.StatusCancelled {
		return registration.ErrEventCancelled
	}

	if registered >= capacity {
		return registration.ErrEventFull
	}

	return fmt.Errorf("registration increment rejected for event %s", eventID)
}

func (repo *RegistrationsRepo) ListByEvent(ctx context.Context, eventID string) (regs []registration.Registration, err error) {
	var rows pgx.Rows

	err = repo.observe("registrations.list_by_event", func() error {
		rows, err = repo.pool.Query(ctx,
			`
		SELECT id, event_id, event_title, name, email, phone, department, year, roll_number, ticket_id, registered_at
		FROM registrations
		WHERE event_id = $1
		ORDER BY registered_at DESC, id ASC
		`,
			eventID,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	regs = make([]registration.Registration, 0)

	for rows.Next() {
		var r registration.Registration

		e := rows.Scan(&r.ID, &r.EventID, &r.EventTitle, &r.Name, &r.Email, &r.Phone, &r.Department, &r.Year, &r.RollNumber, &r.TicketID, &r.RegisteredAt)

		if e != nil {
			err = e
			return
		}
		regs = append(regs, r)
	}

	err = rows.Err()

	return
}

// List is the admin dashboard view across events, newest first.
func (repo *RegistrationsRepo) List(ctx context.Context, filter RegistrationsFilter) ([]registration.Registration, int, error) {
	baseQuery := `
		SELECT id,
			event_id,
			event_title,
			name,
			email,
			phone,
			department,
			year,
			roll_number,
			ticket_id,
			registered_at,
			COUNT(*) OVER() AS total
		FROM registrations
	`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.EventID != nil {
		conds = append(conds, fmt.Sprintf("event_id = $%d", argsPosition))
		args = append(args, *filter.EventID)
		argsPosition++
	}

	if filter.Search != nil {
		conds = append(conds, fmt.Sprintf(`(name ILIKE $%d ESCAPE '\' OR email ILIKE $%d ESCAPE '\' OR roll_number ILIKE $%d ESCAPE '\')`, argsPosition, argsPosition, argsPosition))
		args = append(args, "%"+escapeLike(*filter.Search)+"%")
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY registered_at DESC, id ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	var rows pgx.Rows
	var err error

	err = repo.observe("registrations.list", func() error {
		rows, err = repo.pool.Query(ctx, query, args...)
		return err
	})

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	out := make([]registration.Registration, 0, filter.Limit)
	total := 0

	for rows.Next() {
		var r registration.Registration
		var t int

		err = rows.Scan(&r.ID, &r.EventID, &r.EventTitle, &r.Name, &r.Email, &r.Phone, &r.Department, &r.Year, &r.RollNumber, &r.TicketID, &r.RegisteredAt, &t)

		if err != nil {
			return nil, 0, err
		}

		total = t
		out = append(out, r)
	}

	err = rows.Err()

	if err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (repo *RegistrationsRepo) CountForEvent(ctx context.Context, eventID string) (int, error) {
	op := "registrations.count_for_event"
	var total int
	err := repo.observe(op, func() error {
		return repo.pool.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&total)
	})
	return total, err
}
