package postgres

import (
	"context"
	"errors"

	"github.com/eventsphere/server/internal/domain/admin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAdminNotFound = errors.New("admin not found")
	ErrEmailTaken    = errors.New("admin email already in use")
)

type AdminsRepo struct {
	pool *pgxpool.Pool
}

func NewAdminsRepo(pool *pgxpool.Pool) *AdminsRepo {
	return &AdminsRepo{pool: pool}
}

// GetByEmail looks an admin up by lowercased email.
func (r *AdminsRepo) GetByEmail(ctx context.Context, email string) (admin.Admin, error) {
	var a admin.Admin

	err := r.pool.QueryRow(
		ctx,
		`SELECT id, name, email, password_hash, role, created_at
         FROM admins
         WHERE lower(email) = lower($1)`,
		email,
	).Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&a.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return admin.Admin{}, ErrAdminNotFound
		}

		return admin.Admin{}, err
	}

	return a, nil
}

func (r *AdminsRepo) Create(ctx context.Context, a admin.Admin) (admin.Admin, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO admins (id, name, email, password_hash, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.Name, a.Email, a.PasswordHash, a.Role, a.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError

		// the unique index on lower(email) closes the duplicate-admin race
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return admin.Admin{}, ErrEmailTaken
		}

		return admin.Admin{}, err
	}

	return a, nil
}
