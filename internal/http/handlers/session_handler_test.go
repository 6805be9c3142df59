// README: Integration tests for session handler authorization checks.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"kerb/internal/http/handlers"
	httpmiddleware "kerb/internal/http/middleware"
	"kerb/internal/infra"
	"kerb/internal/modules/pricing"
	"kerb/internal/modules/session"
	"kerb/internal/types"
)

// stubTokenVerifier is a test double for infra.TokenVerifier.
type stubTokenVerifier struct {
	token *infra.FirebaseToken
	err   error
}

func (s *stubTokenVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.FirebaseToken, error) {
	return s.token, s.err
}

type stubTiers struct{}

func (stubTiers) Tier(_ context.Context, id types.ID) (*pricing.Tier, error) {
	if id == "" {
		return nil, pricing.ErrInvalidTier
	}
	cap := 20.0
	return &pricing.Tier{ID: id, Name: "Standard", HourlyRate: 5, DailyCap: &cap, Currency: "USD", IsActive: true}, nil
}

// buildTestRouter wires a minimal Gin engine with the auth middleware and the
// session handler over an in-memory store.
func buildTestRouter(verifier infra.TokenVerifier, store *session.MemoryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := session.NewService(store, stubTiers{})
	r := gin.New()
	r.Use(httpmiddleware.Auth(verifier))
	h := handlers.NewSessionHandler(svc)
	r.POST("/api/sessions", h.Create)
	r.GET("/api/sessions/active", h.Active)
	r.POST("/api/sessions/:id/extend", h.Extend)
	r.POST("/api/sessions/:id/end", h.End)
	return r
}

func makeVerifier(uid string) *stubTokenVerifier {
	return &stubTokenVerifier{token: &infra.FirebaseToken{UID: uid, Claims: map[string]interface{}{}}}
}

func doRequest(r *gin.Engine, method, path string, body interface{}, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedSession(t *testing.T, store *session.MemoryStore, owner types.ID) types.ID {
	t.Helper()
	now := time.Now()
	sess := &session.Session{
		ID:        "sess1",
		OwnerID:   owner,
		Status:    session.StatusActive,
		StartedAt: now,
		ExpiresAt: now.Add(2 * time.Hour),
		Accrued:   types.Money{Amount: 10, Currency: "USD"},
		Token:     "PARK-1-ABCDEF",
		CreatedAt: now,
	}
	if err := store.Insert(context.Background(), sess); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return sess.ID
}

// TestCreate_Unauthenticated verifies that requests without a valid token are rejected.
func TestCreate_Unauthenticated(t *testing.T) {
	r := buildTestRouter(&stubTokenVerifier{err: errors.New("no token")}, session.NewMemoryStore())
	w := doRequest(r, http.MethodPost, "/api/sessions", map[string]any{
		"tier_id":        "t1",
		"duration_hours": 2,
	}, "Bearer badtoken")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// TestCreate_OwnerFromToken verifies the session is created for the token's
// UID, not anything in the request body.
func TestCreate_OwnerFromToken(t *testing.T) {
	store := session.NewMemoryStore()
	r := buildTestRouter(makeVerifier("realUID"), store)
	plate := "ABC 123"
	w := doRequest(r, http.MethodPost, "/api/sessions", map[string]any{
		"tier_id":        "t1",
		"duration_hours": 2.0,
		"plate_entry":    plate,
	}, "Bearer sometoken")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	active, err := store.ActiveByOwner(context.Background(), "realUID")
	if err != nil || len(active) != 1 {
		t.Fatalf("expected one session for realUID, got %d (err %v)", len(active), err)
	}
}

// TestExtend_WrongOwner checks that a caller cannot extend another user's session.
func TestExtend_WrongOwner(t *testing.T) {
	store := session.NewMemoryStore()
	id := seedSession(t, store, "ownerA")
	r := buildTestRouter(makeVerifier("ownerB"), store)
	w := doRequest(r, http.MethodPost, "/api/sessions/"+string(id)+"/extend",
		map[string]any{"additional_hours": 1.0}, "Bearer sometoken")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

// TestEnd_WrongOwner checks that a caller cannot end another user's session.
func TestEnd_WrongOwner(t *testing.T) {
	store := session.NewMemoryStore()
	id := seedSession(t, store, "ownerA")
	r := buildTestRouter(makeVerifier("ownerB"), store)
	w := doRequest(r, http.MethodPost, "/api/sessions/"+string(id)+"/end", nil, "Bearer sometoken")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

// TestEnd_OwnSession verifies the owner can end their session.
func TestEnd_OwnSession(t *testing.T) {
	store := session.NewMemoryStore()
	id := seedSession(t, store, "ownerA")
	r := buildTestRouter(makeVerifier("ownerA"), store)
	w := doRequest(r, http.MethodPost, "/api/sessions/"+string(id)+"/end", nil, "Bearer sometoken")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != session.StatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
}
