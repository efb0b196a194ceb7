package postgres

import (
	"context"

	"github.com/eventsphere/server/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type TopEvent struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Registered int    `json:"registered"`
	Capacity   int    `json:"capacity"`
}

type Stats struct {
	TotalEvents        int             `json:"totalEvents"`
	TotalRegistrations int             `json:"totalRegistrations"`
	UpcomingEvents     int             `json:"upcomingEvents"`
	CancelledEvents    int             `json:"cancelledEvents"`
	EventsByCategory   []CategoryCount `json:"eventsByCategory"`
	TopEvents          []TopEvent      `json:"topEvents"`
}

type StatsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewStatsRepo(pool *pgxpool.Pool, prom *observability.Prom) *StatsRepo {
	return &StatsRepo{pool: pool, prom: prom}
}

func (r *StatsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Collect gathers the admin dashboard aggregates.
func (r *StatsRepo) Collect(ctx context.Context) (Stats, error) {
	s := Stats{
		EventsByCategory: make([]CategoryCount, 0),
		TopEvents:        make([]TopEvent, 0),
	}

	err := r.observe("stats.counts", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT
				(SELECT COUNT(*) FROM events),
				(SELECT COUNT(*) FROM registrations),
				(SELECT COUNT(*) FROM events WHERE status = 'upcoming'),
				(SELECT COUNT(*) FROM events WHERE status = 'cancelled')
		`).Scan(&s.TotalEvents, &s.TotalRegistrations, &s.UpcomingEvents, &s.CancelledEvents)
	})

	if err != nil {
		return Stats{}, err
	}

	var rows pgx.Rows

	err = r.observe("stats.by_category", func() error {
		var e error
		rows, e = r.pool.Query(ctx, `
			SELECT category, COUNT(*) AS count
			FROM events
			GROUP BY category
			ORDER BY count DESC, category ASC
		`)
		return e
	})

	if err != nil {
		return Stats{}, err
	}

	for rows.Next() {
		var c CategoryCount

		if e := rows.Scan(&c.Category, &c.Count); e != nil {
			rows.Close()
			return Stats{}, e
		}

		s.EventsByCategory = append(s.EventsByCategory, c)
	}

	rows.Close()

	if err = rows.Err(); err != nil {
		return Stats{}, err
	}

	err = r.observe("stats.top_events", func() error {
		var e error
		rows, e = r.pool.Query(ctx, `
			SELECT id, title, registered, capacity
			FROM events
			ORDER BY registered DESC, id ASC
			LIMIT 5
		`)
		return e
	})

	if err != nil {
		return Stats{}, err
	}

	defer rows.Close()

	for rows.Next() {
		var t TopEvent

		if e := rows.Scan(&t.ID, &t.Title, &t.Registered, &t.Capacity); e != nil {
			return Stats{}, e
		}

		s.TopEvents = append(s.TopEvents, t)
	}

	if err = rows.Err(); err != nil {
		return Stats{}, err
	}

	return s, nil
}
