package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/eventsphere/server/internal/cache"
	"github.com/eventsphere/server/internal/config"
	"github.com/eventsphere/server/internal/db"
	apphttp "github.com/eventsphere/server/internal/http"
	"github.com/eventsphere/server/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

func testConfig() config.Config {
	return config.Config{
		Env:           "test",
		JWTSecret:     "test-secret-key",
		TokenTTL:      time.Hour,
		CORSOrigins:   []string{"*"},
		AdminName:     "Test Admin",
		AdminEmail:    "admin@test.edu",
		AdminPassword: "Admin@1234",
	}
}

func setupTestRouter(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping integration test")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)

	if err != nil {
		t.Fatalf("failed to create pgx pool: %v", err)
	}

	t.Cleanup(pool.Close)

	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	promReg := prometheus.NewRegistry()
	prom := observability.NewProm(promReg)

	// a tiny TTL so list caching never leaks state across tests
	store := cache.NewMemory(time.Millisecond)

	router := apphttp.NewRouter(logger, pool, testConfig(), prom, promReg, store, time.Now())

	return router, pool
}

// reset db function after every test

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	// registrations depend on events, truncate together
	_, err := pool.Exec(context.Background(), `TRUNCATE events, registrations, admins`)

	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// Create a seeded event for our integration tests

func seedEvent(t *testing.T, pool *pgxpool.Pool, capacity int, status string) string {
	t.Helper()
	id := uuid.NewString()
	now := time.Now().UTC()
	date := now.Add(24 * time.Hour)

	_, err := pool.Exec(
		context.Background(),
		`INSERT INTO events (id, title, description, date, venue, capacity, registered, category, image, tags, status, created_by, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,0,$7,NULL,$8,$9,$10,$11,$11)`,
		id,
		"Test Event",
		"Integration test event",
		date,
		"Test Hall",
		capacity,
		"Workshop",
		[]string{},
		status,
		"admin@test.edu",
		now,
	)

	if err != nil {
		t.Fatalf("failed to insert seed event: %v", err)
	}

	return id
}

func registrationBody(email string) string {
	return fmt.Sprintf(`{
		"name": "Sam Doe",
		"email": %q,
		"phone": "9876543210",
		"department": "CSE",
		"year": "3",
		"rollNumber": "CS-2023-042"
	}`, email)
}

func register(router *gin.Engine, eventID, email string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/events/"+eventID+"/register", bytes.NewBufferString(registrationBody(email)))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestRegisterIntegration_HappyPath(t *testing.T) {
	router, pool := setupTestRouter(t)

	resetDB(t, pool)
	defer resetDB(t, pool)
	eventID := seedEvent(t, pool, 2, "upcoming")

	w := register(router, eventID, "sam@example.com")

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp struct {
		Message      string `json:"message"`
		Registration struct {
			TicketID string `json:"ticketId"`
		} `json:"registration"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Message != "Registration successful!" {
		t.Fatalf("got message %q", resp.Message)
	}

	if len(resp.Registration.TicketID) != 12 || resp.Registration.TicketID[:4] != "TKT-" {
		t.Fatalf("unexpected ticket id %q", resp.Registration.TicketID)
	}

	// the row exists and the counter moved

	var count, registered int
	err := pool.QueryRow(
		context.Background(),
		`SELECT
			(SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND email = $2),
			(SELECT registered FROM events WHERE id = $1)`,
		eventID,
		"sam@example.com",
	).Scan(&count, &registered)

	if err != nil {
		t.Fatalf("failed to query registrations: %v", err)
	}

	if count != 1 || registered != 1 {
		t.Fatalf("expected 1 registration and registered=1, got count=%d registered=%d", count, registered)
	}
}

func TestRegisterIntegration_DuplicateEmail(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)
	defer resetDB(t, pool)

	eventID := seedEvent(t, pool, 5, "upcoming")

	w1 := register(router, eventID, "sam@example.com")

	if w1.Code != http.StatusCreated {
		t.Fatalf("[first call] got status %d, body=%s", w1.Code, w1.Body.String())
	}

	// same address with different casing is still the same registrant
	w2 := register(router, eventID, "Sam@Example.COM")

	if w2.Code != http.StatusConflict {
		t.Fatalf("[second call] got status %d, want %d, body=%s", w2.Code, http.StatusConflict, w2.Body.String())
	}

	var resp struct {
		Error string `json:"error"`
	}

	if err := json.Unmarshal(w2.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v", err)
	}

	if resp.Error != "You are already registered for this event" {
		t.Fatalf("got error %q", resp.Error)
	}

	// the failed attempt must not have consumed a seat

	var registered int
	if err := pool.QueryRow(context.Background(), `SELECT registered FROM events WHERE id = $1`, eventID).Scan(&registered); err != nil {
		t.Fatalf("failed to query event: %v", err)
	}

	if registered != 1 {
		t.Fatalf("expected registered=1 after duplicate rejection, got %d", registered)
	}
}

func TestRegisterIntegration_EventFull(t *testing.T) {
	router, pool := setupTestRouter(t)

	resetDB(t, pool)
	defer resetDB(t, pool)
	eventID := seedEvent(t, pool, 1, "upcoming")

	w1 := register(router, eventID, "user1@example.com")

	if w1.Code != http.StatusCreated {
		t.Fatalf("[first call] got status %d, body=%s", w1.Code, w1.Body.String())
	}

	w2 := register(router, eventID, "user2@example.com")

	if w2.Code != http.StatusBadRequest {
		t.Fatalf("[second call] got status %d, want %d, body=%s", w2.Code, http.StatusBadRequest, w2.Body.String())
	}

	var resp struct {
		Error string `json:"error"`
	}

	if err := json.Unmarshal(w2.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v", err)
	}

	if resp.Error != "Event is at full capacity" {
		t.Fatalf("got error %q", resp.Error)
	}
}

func TestRegisterIntegration_CancelledEvent(t *testing.T) {
	router, pool := setupTestRouter(t)

	resetDB(t, pool)
	defer resetDB(t, pool)
	eventID := seedEvent(t, pool, 10, "cancelled")

	w := register(router, eventID, "user@example.com")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp struct {
		Error string `json:"error"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v", err)
	}

	if resp.Error != "Event is cancelled" {
		t.Fatalf("got error %q", resp.Error)
	}
}

func TestRegisterIntegration_EventNotFound(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)
	defer resetDB(t, pool)

	w := register(router, uuid.NewString(), "sam@example.com")

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusNotFound, w.Body.String())
	}
}

// The property the whole storage design hangs on: N concurrent attempts
// against C seats yield exactly C created registrations, never more.
func TestRegisterIntegration_ConcurrentNeverOversells(t *testing.T) {
	router, pool := setupTestRouter(t)

	resetDB(t, pool)
	defer resetDB(t, pool)

	const capacity = 5
	const attempts = 20

	eventID := seedEvent(t, pool, capacity, "upcoming")

	var wg sync.WaitGroup
	codes := make([]int, attempts)

	for i := 0; i < attempts; i++ {
		i := i
		wg.Add(1)

		go func() {
			defer wg.Done()
			w := register(router, eventID, fmt.Sprintf("user%d@example.com", i))
			codes[i] = w.Code
		}()
	}

	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
		}
	}

	if created != capacity {
		t.Fatalf("expected exactly %d successful registrations, got %d (codes=%v)", capacity, created, codes)
	}

	var rows, registered int
	err := pool.QueryRow(
		context.Background(),
		`SELECT
			(SELECT COUNT(*) FROM registrations WHERE event_id = $1),
			(SELECT registered FROM events WHERE id = $1)`,
		eventID,
	).Scan(&rows, &registered)

	if err != nil {
		t.Fatalf("failed to query state: %v", err)
	}

	if rows != capacity || registered != capacity {
		t.Fatalf("want %d rows and registered=%d, got rows=%d registered=%d", capacity, capacity, rows, registered)
	}
}
