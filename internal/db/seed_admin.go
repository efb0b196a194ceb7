package db

import (
	"context"
	"strings"
	"time"

	"github.com/eventsphere/server/internal/config"
	"github.com/eventsphere/server/internal/domain/admin"
	"github.com/eventsphere/server/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureDefaultAdmin seeds the default admin exactly once. It keys off an
// empty admins table rather than a fixed id, so re-running it is a no-op
// even after the default admin's email has been changed.
func EnsureDefaultAdmin(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) (seeded bool, err error) {
	var count int

	err = pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count)

	if err != nil {
		return false, err
	}

	if count > 0 {
		return false, nil
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return false, err
	}

	a := admin.Admin{
		ID:           uuid.NewString(),
		Name:         cfg.AdminName,
		Email:        strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
		PasswordHash: hash,
		Role:         admin.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO admins (id, name, email, password_hash, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		`,
		a.ID, a.Name, a.Email, a.PasswordHash, a.Role, a.CreatedAt,
	)

	if err != nil {
		return false, err
	}

	return true, nil
}
