package journal_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/emberlog/emberlog/internal/journal"
	"github.com/emberlog/emberlog/internal/rbac"
	"github.com/emberlog/emberlog/internal/shared"
	_ "github.com/emberlog/emberlog/testing"
)

type stubStorage struct {
	owners map[string]*journal.Owner
}

func (s *stubStorage) LoadOwner(ctx context.Context, id string) (*journal.Owner, error) {
	owner, ok := s.owners[id]
	if !ok {
		return nil, fmt.Errorf("%w: owner %s", journal.ErrNotFound, id)
	}
	clone := *owner
	clone.Emotions = append([]journal.Emotion(nil), owner.Emotions...)
	clone.Days = append([]journal.Day(nil), owner.Days...)
	return &clone, nil
}

func (s *stubStorage) PersistOwner(ctx context.Context, owner *journal.Owner) error {
	owner.Version++
	s.owners[owner.ID] = owner
	return nil
}

func (s *stubStorage) ListOwnerIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(s.owners))
	for id, owner := range s.owners {
		if !owner.Deleted {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// sessionAs fabricates an authenticated session for every request.
func sessionAs(t *testing.T, ownerID, role string) func(http.Handler) http.Handler {
	t.Helper()
	manager := shared.NewSessionManager(nil, "test_session", "secret", time.Hour, false)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := manager.Load(r.Context(), r)
			if err != nil {
				t.Fatalf("load session: %v", err)
			}
			if ownerID != "" {
				sess.SetOwner(ownerID, role)
			}
			ctx := shared.ContextWithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newJournalServer(t *testing.T, ownerID, role string) http.Handler {
	t.Helper()
	storage := &stubStorage{owners: map[string]*journal.Owner{
		"owner-1": {
			ID:   "owner-1",
			Role: "user",
			Emotions: []journal.Emotion{
				{ID: "e1", Name: "Joy", Color: "#ffcc00"},
			},
			Days: []journal.Day{
				{ID: "d1", Date: "2024-03-01", Emotions: []string{"e1"}},
			},
		},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := rbac.NewResolver(rbac.BuiltinRegistry())
	guard := rbac.Middleware{Resolver: resolver, Logger: logger}
	service := journal.NewService(storage, logger)
	handler := journal.NewHandler(logger, service, guard)

	router := chi.NewRouter()
	router.Use(sessionAs(t, ownerID, role))
	handler.MountRoutes(router)
	return router
}

func doJSON(t *testing.T, server http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res := httptest.NewRecorder()
	server.ServeHTTP(res, req)
	return res
}

func TestJournalRequiresLogin(t *testing.T) {
	server := newJournalServer(t, "", "")
	res := doJSON(t, server, http.MethodGet, "/emotions", "")
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestJournalAuditorIsReadOnly(t *testing.T) {
	server := newJournalServer(t, "owner-1", "auditor")

	res := doJSON(t, server, http.MethodGet, "/emotions", "")
	if res.Code != http.StatusOK {
		t.Fatalf("auditor read should pass, got %d: %s", res.Code, res.Body.String())
	}

	res = doJSON(t, server, http.MethodPost, "/emotions", `{"name":"Hope","color":"#00ff00"}`)
	if res.Code != http.StatusForbidden {
		t.Fatalf("auditor write should be forbidden, got %d", res.Code)
	}
}

func TestJournalCreateEmotion(t *testing.T) {
	server := newJournalServer(t, "owner-1", "user")

	res := doJSON(t, server, http.MethodPost, "/emotions", `{"name":"Hope","color":"#00ff00"}`)
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}

	res = doJSON(t, server, http.MethodPost, "/emotions", `{"name":"Joy","color":"#111111"}`)
	if res.Code != http.StatusConflict {
		t.Fatalf("duplicate name should map to 409, got %d: %s", res.Code, res.Body.String())
	}
}

func TestJournalCreateEmotionValidation(t *testing.T) {
	server := newJournalServer(t, "owner-1", "user")

	res := doJSON(t, server, http.MethodPost, "/emotions", `{"color":"#00ff00"}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("missing name should map to 400, got %d", res.Code)
	}

	res = doJSON(t, server, http.MethodPost, "/emotions", `{"name":"Hope","color":"lime"}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("bad color should map to 400, got %d: %s", res.Code, res.Body.String())
	}
}

func TestJournalCreateDayErrors(t *testing.T) {
	server := newJournalServer(t, "owner-1", "user")

	res := doJSON(t, server, http.MethodPost, "/days", `{"date":"2024-03-02","emotions":["ghost"]}`)
	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown emotion ref should map to 422, got %d: %s", res.Code, res.Body.String())
	}

	res = doJSON(t, server, http.MethodPost, "/days", `{"date":"2023-02-30","emotions":["e1"]}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("impossible date should map to 400, got %d: %s", res.Code, res.Body.String())
	}

	res = doJSON(t, server, http.MethodPost, "/days", `{"date":"2024-03-01","emotions":["e1"]}`)
	if res.Code != http.StatusConflict {
		t.Fatalf("duplicate date should map to 409, got %d: %s", res.Code, res.Body.String())
	}
}

func TestJournalDayLifecycle(t *testing.T) {
	server := newJournalServer(t, "owner-1", "user")

	res := doJSON(t, server, http.MethodPost, "/days", `{"date":"2024-03-02","description":"calm evening","emotions":["e1"]}`)
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}

	res = doJSON(t, server, http.MethodPut, "/days/2024-03-02", `{"description":"stormy evening"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	res = doJSON(t, server, http.MethodDelete, "/days/2024-03-02", "")
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}

	res = doJSON(t, server, http.MethodDelete, "/days/2024-03-09", "")
	if res.Code != http.StatusNotFound {
		t.Fatalf("absent date should map to 404, got %d", res.Code)
	}
}

func TestJournalDeleteEmotionIdempotent(t *testing.T) {
	server := newJournalServer(t, "owner-1", "user")

	for i := 0; i < 2; i++ {
		res := doJSON(t, server, http.MethodDelete, "/emotions/e1", "")
		if res.Code != http.StatusNoContent {
			t.Fatalf("delete %d: expected 204, got %d", i, res.Code)
		}
	}

	res := doJSON(t, server, http.MethodDelete, "/emotions/missing", "")
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown emotion, got %d", res.Code)
	}
}

func TestJournalOwnerAdministration(t *testing.T) {
	server := newJournalServer(t, "owner-1", "user")
	res := doJSON(t, server, http.MethodGet, "/owners", "")
	if res.Code != http.StatusForbidden {
		t.Fatalf("user must not list owners, got %d", res.Code)
	}

	admin := newJournalServer(t, "owner-1", "admin")
	res = doJSON(t, admin, http.MethodGet, "/owners", "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	res = doJSON(t, admin, http.MethodDelete, "/owners/owner-1", "")
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", res.Code, res.Body.String())
	}

	// The tombstoned owner no longer resolves.
	res = doJSON(t, admin, http.MethodDelete, "/owners/owner-1", "")
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after tombstone, got %d", res.Code)
	}
}
