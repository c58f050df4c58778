package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmelnikov5/task-manager/internal/config"
	"github.com/nmelnikov5/task-manager/internal/model"
)

// These tests drive the fully assembled router through httptest: real
// middleware chain, real JSON file store on a temp dir, real bcrypt and
// real JWTs. Only the network socket is fake.

const testSecret = "integration-test-secret-which-is-long-enough"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:      0,
		JWTSecret: testSecret,
		Storage:   config.StorageJSON,
		DataDir:   t.TempDir(),
	}
}

func newTestServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError}))
	srv, err := New(cfg, logger)
	require.NoError(t, err)
	return srv.Handler()
}

// testWriter routes server logs through t.Logf so failures show context
// without polluting passing runs.
type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", p)
	return len(p), nil
}

// do sends one request and returns the recorder. body may be nil.
func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func register(t *testing.T, h http.Handler, username, password string) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/register", "",
		map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusCreated, rec.Code, "register %s: %s", username, rec.Body.String())
}

func login(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/login", "",
		map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, "login %s: %s", username, rec.Body.String())
	resp := decodeBody[map[string]string](t, rec)
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

type listEnvelope struct {
	Data []model.TodoItem `json:"data"`
}

func TestFullFlow(t *testing.T) {
	h := newTestServer(t, testConfig(t))

	// Register and log in.
	register(t, h, "alice", "secret1")
	token := login(t, h, "alice", "secret1")

	// Fresh account starts with an empty (but present) list.
	rec := do(t, h, http.MethodGet, "/api/todo-items", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[listEnvelope](t, rec)
	assert.NotNil(t, list.Data)
	assert.Empty(t, list.Data)

	// Create an item with only text — everything else defaults.
	rec = do(t, h, http.MethodPost, "/api/todo-items", token, map[string]any{"text": "buy milk"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[model.TodoItem](t, rec)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "buy milk", created.Text)
	assert.False(t, created.Done)
	assert.Equal(t, model.StatusNew, created.Status)
	assert.Equal(t, 1, created.UserID)
	assert.NotNil(t, created.Tags)
	assert.Empty(t, created.Tags)
	assert.Nil(t, created.DueDate)

	// The item shows up in the list.
	rec = do(t, h, http.MethodGet, "/api/todo-items", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list = decodeBody[listEnvelope](t, rec)
	require.Len(t, list.Data, 1)
	assert.Equal(t, created, list.Data[0])

	// Delete it, list goes back to empty.
	rec = do(t, h, http.MethodDelete, "/api/todo-items/1", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/todo-items", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list = decodeBody[listEnvelope](t, rec)
	assert.Empty(t, list.Data)
}

func TestPartialUpdate(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	register(t, h, "alice", "secret1")
	token := login(t, h, "alice", "secret1")

	due := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	rec := do(t, h, http.MethodPost, "/api/todo-items", token, map[string]any{
		"text":    "write report",
		"dueDate": due,
		"tags":    []string{"work"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Patch only "done" — every other field must survive.
	rec = do(t, h, http.MethodPut, "/api/todo-items/1", token, map[string]any{"done": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[model.TodoItem](t, rec)
	assert.True(t, updated.Done)
	assert.Equal(t, "write report", updated.Text)
	assert.Equal(t, []string{"work"}, updated.Tags)
	require.NotNil(t, updated.DueDate)
	assert.True(t, due.Equal(*updated.DueDate))

	// Explicit null clears the due date; an absent key would not.
	rec = do(t, h, http.MethodPut, "/api/todo-items/1", token, map[string]any{"dueDate": nil})
	require.Equal(t, http.StatusOK, rec.Code)
	updated = decodeBody[model.TodoItem](t, rec)
	assert.Nil(t, updated.DueDate)
	assert.True(t, updated.Done)

	// A patch cannot move the item to another user or renumber it.
	rec = do(t, h, http.MethodPut, "/api/todo-items/1", token, map[string]any{"id": 99, "userId": 42})
	require.Equal(t, http.StatusOK, rec.Code)
	updated = decodeBody[model.TodoItem](t, rec)
	assert.Equal(t, 1, updated.ID)
	assert.Equal(t, 1, updated.UserID)
}

func TestUserIsolation(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	register(t, h, "alice", "secret1")
	register(t, h, "bob", "hunter2")
	aliceToken := login(t, h, "alice", "secret1")
	bobToken := login(t, h, "bob", "hunter2")

	rec := do(t, h, http.MethodPost, "/api/todo-items", aliceToken, map[string]any{"text": "alice's item"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Bob sees nothing.
	rec = do(t, h, http.MethodGet, "/api/todo-items", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[listEnvelope](t, rec)
	assert.Empty(t, list.Data)

	// Bob cannot update or delete Alice's item — it looks like it doesn't exist.
	rec = do(t, h, http.MethodPut, "/api/todo-items/1", bobToken, map[string]any{"done": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/todo-items/1", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Alice's item is untouched.
	rec = do(t, h, http.MethodGet, "/api/todo-items", aliceToken, nil)
	list = decodeBody[listEnvelope](t, rec)
	require.Len(t, list.Data, 1)
	assert.False(t, list.Data[0].Done)
}

func TestAuthErrors(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	register(t, h, "alice", "secret1")

	t.Run("duplicate username", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/register", "",
			map[string]string{"username": "alice", "password": "other"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing credentials", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/register", "", map[string]string{"username": "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/login", "",
			map[string]string{"username": "alice", "password": "wrong"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeBody[map[string]string](t, rec)
		assert.Equal(t, "invalid username or password", resp["error"])
	})

	t.Run("unknown user", func(t *testing.T) {
		// Same status and body as a wrong password — no username probing.
		rec := do(t, h, http.MethodPost, "/api/login", "",
			map[string]string{"username": "nobody", "password": "whatever"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeBody[map[string]string](t, rec)
		assert.Equal(t, "invalid username or password", resp["error"])
	})

	t.Run("missing token", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/todo-items", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		resp := decodeBody[map[string]string](t, rec)
		assert.Equal(t, "access denied", resp["error"])
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/todo-items", "not.a.jwt", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeBody[map[string]string](t, rec)
		assert.Equal(t, "invalid token", resp["error"])
	})
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	rec := do(t, h, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "ok", resp["status"])
}

// TestRestartKeepsData builds a second server over the same data directory
// and checks that accounts, items, and previously issued tokens all survive.
func TestRestartKeepsData(t *testing.T) {
	cfg := testConfig(t)

	h1 := newTestServer(t, cfg)
	register(t, h1, "alice", "secret1")
	token := login(t, h1, "alice", "secret1")
	rec := do(t, h1, http.MethodPost, "/api/todo-items", token, map[string]any{"text": "survive restart"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// "Restart": a fresh Server over the same directory and secret.
	h2 := newTestServer(t, cfg)

	rec = do(t, h2, http.MethodGet, "/api/todo-items", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[listEnvelope](t, rec)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "survive restart", list.Data[0].Text)

	// Logging in again also still works against the persisted hash.
	login(t, h2, "alice", "secret1")
}

func TestCORSHeaders(t *testing.T) {
	cfg := testConfig(t)
	cfg.AllowedOrigin = "https://app.example.com"
	h := newTestServer(t, cfg)

	rec := do(t, h, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	// Preflight short-circuits before routing.
	req := httptest.NewRequest(http.MethodOptions, "/api/todo-items", nil)
	pre := httptest.NewRecorder()
	h.ServeHTTP(pre, req)
	assert.Equal(t, http.StatusOK, pre.Code)
	assert.Contains(t, pre.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

// TestSQLiteBackend runs the core flow against the alternative storage
// backend to prove the wiring switch, not the repository internals (those
// have their own tests).
func TestSQLiteBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage = config.StorageSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "tasks.db")
	h := newTestServer(t, cfg)

	register(t, h, "alice", "secret1")
	token := login(t, h, "alice", "secret1")

	rec := do(t, h, http.MethodPost, "/api/todo-items", token, map[string]any{"text": "from sqlite"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[model.TodoItem](t, rec)
	assert.Equal(t, 1, created.ID)

	rec = do(t, h, http.MethodGet, "/api/todo-items", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[listEnvelope](t, rec)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "from sqlite", list.Data[0].Text)
}
