package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-todo-api/internal/config"
	"go-todo-api/internal/handler"
	"go-todo-api/internal/middleware"
	"go-todo-api/internal/model"
	"go-todo-api/internal/router"
	"go-todo-api/internal/service"
	"go-todo-api/internal/token"
)

// In-memory stores so the full HTTP stack can be exercised without
// Postgres. They satisfy the same interfaces the pgx repositories do.

type memUserStore struct {
	mu      sync.Mutex
	byEmail map[string]model.User
	byID    map[string]model.User
}

func (s *memUserStore) Create(ctx context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[u.Email]; exists {
		return model.ErrEmailAlreadyTaken
	}
	s.byEmail[u.Email] = u
	s.byID[u.ID] = u
	return nil
}

func (s *memUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, exists := s.byEmail[email]
	if !exists {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *memUserStore) FindByID(ctx context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, exists := s.byID[id]
	if !exists {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

type memTokenStore struct {
	mu     sync.Mutex
	byHash map[string]model.TokenRecord
}

func (s *memTokenStore) Create(ctx context.Context, rec model.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byHash[rec.TokenHash] = rec
	return nil
}

func (s *memTokenStore) FindByHash(ctx context.Context, tokenHash string) (model.TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, exists := s.byHash[tokenHash]
	if !exists {
		return model.TokenRecord{}, model.ErrTokenNotFound
	}
	return rec, nil
}

func (s *memTokenStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, rec := range s.byHash {
		if rec.ID == id {
			delete(s.byHash, hash)
		}
	}
	return nil
}

func (s *memTokenStore) DeleteAllForUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, rec := range s.byHash {
		if rec.UserID == userID {
			delete(s.byHash, hash)
		}
	}
	return nil
}

type memTodoStore struct {
	mu    sync.Mutex
	todos map[string]model.Todo
}

func (s *memTodoStore) Create(ctx context.Context, todo model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos[todo.ID] = todo
	return nil
}

func (s *memTodoStore) FindByID(ctx context.Context, id string, userID string) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	todo, exists := s.todos[id]
	if !exists || todo.UserID != userID {
		return model.Todo{}, model.ErrTodoNotFound
	}
	return todo, nil
}

func (s *memTodoStore) List(ctx context.Context, userID string, filter model.TodoFilter) ([]model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Todo, 0)
	for _, todo := range s.todos {
		if todo.UserID != userID {
			continue
		}
		if filter.Completed != nil && todo.Completed != *filter.Completed {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(todo.Description), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, todo)
	}
	return out, nil
}

func (s *memTodoStore) Update(ctx context.Context, todo model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, exists := s.todos[todo.ID]
	if !exists || existing.UserID != todo.UserID {
		return model.ErrTodoNotFound
	}
	s.todos[todo.ID] = todo
	return nil
}

func (s *memTodoStore) Delete(ctx context.Context, id string, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	todo, exists := s.todos[id]
	if !exists || todo.UserID != userID {
		return model.ErrTodoNotFound
	}
	delete(s.todos, id)
	return nil
}

type healthOK struct{}

func (healthOK) Health(ctx context.Context) error { return nil }

const testAuthHeader = "Auth"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	codec, err := token.NewCodec([]byte("0123456789abcdef0123456789abcdef"), []byte("test-signing-key"), time.Hour)
	require.NoError(t, err)

	users := &memUserStore{byEmail: map[string]model.User{}, byID: map[string]model.User{}}
	tokens := &memTokenStore{byHash: map[string]model.TokenRecord{}}
	todos := &memTodoStore{todos: map[string]model.Todo{}}

	authService, err := service.NewAuthService(users, tokens, codec, []byte("test-signing-key"), "authentication", 4)
	require.NoError(t, err)
	todoService := service.NewTodoService(todos)

	cfg := &config.Config{
		ServerPort:       "3000",
		RequestTimeout:   30 * time.Second,
		AuthHeader:       testAuthHeader,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     10000,
		AuthRateLimitRPM: 10000,
	}

	authMiddleware := middleware.NewAuthMiddleware(authService, cfg.AuthHeader)
	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:   handler.NewAuthHandler(authService, cfg.AuthHeader),
		Todo:   handler.NewTodoHandler(todoService),
		Health: handler.NewHealthHandler(healthOK{}),
	})

	server := httptest.NewServer(appRouter)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func doAuthed(t *testing.T, method string, url string, rawToken string, payload any) *http.Response {
	t.Helper()

	var reader io.Reader = bytes.NewReader(nil)
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set(testAuthHeader, rawToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

// registerAndLogin registers a fresh user and returns the issued token.
func registerAndLogin(t *testing.T, server *httptest.Server, email string, password string) string {
	t.Helper()

	registerResp := postJSON(t, server.URL+"/users", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)

	loginResp := postJSON(t, server.URL+"/users/login", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, loginResp.StatusCode)

	rawToken := loginResp.Header.Get(testAuthHeader)
	require.NotEmpty(t, rawToken)
	return rawToken
}
