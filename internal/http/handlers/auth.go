package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/eventsphere/server/internal/auth"
	"github.com/eventsphere/server/internal/config"
	"github.com/eventsphere/server/internal/domain/admin"
	"github.com/eventsphere/server/internal/repo/postgres"
	"github.com/eventsphere/server/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminsStore interface {
	GetByEmail(ctx context.Context, email string) (admin.Admin, error)
	Create(ctx context.Context, a admin.Admin) (admin.Admin, error)
}

type AuthHandler struct {
	admins AdminsStore
	jwt    *auth.Manager
	log    *slog.Logger
}

func NewAuthHandler(admins AdminsStore, jwtManager *auth.Manager, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		admins: admins,
		jwt:    jwtManager,
		log:    log,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterAdminRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	found, err := h.admins.GetByEmail(cctx, strings.TrimSpace(req.Email))

	if err != nil {
		if errors.Is(err, postgres.ErrAdminNotFound) {
			RespondUnauthorized(ctx, "Invalid credentials")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "admin lookup failed", "err", err)
		RespondInternal(ctx)
		return
	}

	err = security.CheckPassword(found.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	token, err := h.jwt.GenerateToken(found.ID, found.Email, found.Role)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "token generation failed", "err", err)
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"admin": gin.H{
			"id":    found.ID,
			"name":  found.Name,
			"email": found.Email,
			"role":  found.Role,
		},
	})
}

// RegisterAdmin runs behind the auth guard: any existing admin may create
// another.
func (h *AuthHandler) RegisterAdmin(ctx *gin.Context) {
	var req RegisterAdminRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "password hashing failed", "err", err)
		RespondInternal(ctx)
		return
	}

	a := admin.Admin{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         admin.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := h.admins.Create(cctx, a)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			RespondConflict(ctx, "Admin with this email already exists")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "admin creation failed", "err", err)
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Admin created successfully",
		"admin": gin.H{
			"name":  created.Name,
			"email": created.Email,
		},
	})
}
