package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taskery/taskery/internal/config"
	usercontroller "github.com/taskery/taskery/internal/db/controller/user"
	"github.com/taskery/taskery/internal/db/models"
	"github.com/taskery/taskery/internal/db/sequence"
	websess "github.com/taskery/taskery/internal/web/session"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")

	err = db.AutoMigrate(
		&models.User{},
		&models.TaskGroup{},
		&models.Membership{},
		&models.Task{},
		&sequence.Sequence{},
	)
	require.NoError(t, err, "failed to migrate models")

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Webserver: config.Webserver{
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
	}
}

// testStorage is a minimal in-memory implementation of storage.Storage for tests.
type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.data[key]
	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

func initSessionStore() {
	websess.Init(&testStorage{data: make(map[string][]byte)})
}

func performJSON(t *testing.T, app *fiber.App, target, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err, "app.Test failed")

	return resp
}

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	app := fiber.New()
	initSessionStore()

	var s Service
	require.NoError(t, s.Init(app, newTestConfig(), db))

	t.Run("malformed body", func(t *testing.T) {
		resp := performJSON(t, app, PathRegister, "{")
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("short password", func(t *testing.T) {
		resp := performJSON(t, app, PathRegister,
			`{"name":"alice","email":"alice@example.com","password":"short"}`)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("successful register", func(t *testing.T) {
		resp := performJSON(t, app, PathRegister,
			`{"name":"alice","email":"alice@example.com","password":"correcthorse"}`)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		payload := string(body)
		assert.Contains(t, payload, `"name":"alice"`)
		assert.Contains(t, payload, `"email":"alice@example.com"`)
		assert.NotContains(t, payload, "password")
	})

	t.Run("duplicate email", func(t *testing.T) {
		resp := performJSON(t, app, PathRegister,
			`{"name":"alice again","email":"alice@example.com","password":"correcthorse"}`)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	app := fiber.New()
	initSessionStore()

	var s Service
	require.NoError(t, s.Init(app, newTestConfig(), db))

	user, err := usercontroller.Create(db, "bob", "bob@example.com", "correcthorse")
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		resp := performJSON(t, app, PathLogin,
			`{"email":"nobody@example.com","password":"correcthorse"}`)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := performJSON(t, app, PathLogin,
			`{"email":"bob@example.com","password":"wrong"}`)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("successful login", func(t *testing.T) {
		resp := performJSON(t, app, PathLogin,
			`{"email":"bob@example.com","password":"correcthorse"}`)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out loginOutput
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		require.NotEmpty(t, out.Token)

		// the minted token resolves back to the user
		var sessData websess.Data
		require.NoError(t, sessData.Read(out.Token))
		assert.Equal(t, user.ID, sessData.UserID)
		assert.Equal(t, "bob@example.com", sessData.Email)

		// logout invalidates the token
		req := httptest.NewRequest(http.MethodPost, PathLogout, nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+out.Token)

		logoutResp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = logoutResp.Body.Close() }()

		assert.Equal(t, http.StatusNoContent, logoutResp.StatusCode)
		assert.Error(t, sessData.Read(out.Token))
	})
}
