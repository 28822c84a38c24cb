package taskgroup

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
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
	taskgroupcontroller "github.com/taskery/taskery/internal/db/controller/taskgroup"
	usercontroller "github.com/taskery/taskery/internal/db/controller/user"
	"github.com/taskery/taskery/internal/db/models"
	"github.com/taskery/taskery/internal/db/sequence"
	authmw "github.com/taskery/taskery/internal/web/middleware/auth"
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

// newTestApp wires the auth middleware in front of the handler, like the
// production web service does.
func newTestApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()

	websess.Init(&testStorage{data: make(map[string][]byte)})

	app := fiber.New()
	app.Use(authmw.New(db))

	var s Service
	require.NoError(t, s.Init(app, newTestConfig(), db))

	return app
}

// loginAs creates a user and mints a session token for them.
func loginAs(t *testing.T, db *gorm.DB, name, email string) (*models.User, string) {
	t.Helper()

	user, err := usercontroller.Create(db, name, email, "correcthorse")
	require.NoError(t, err)

	token := websess.GenerateToken()
	sessData := &websess.Data{UserID: user.ID, Email: user.Email}
	require.NoError(t, sessData.Write(token, time.Minute))

	return user, token
}

func performReq(t *testing.T, app *fiber.App, method, target, token, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err, "app.Test failed")

	return resp
}

func TestAuthRequired(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(t, db)

	t.Run("missing token", func(t *testing.T) {
		resp := performReq(t, app, http.MethodGet, Path, "", "")
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown token", func(t *testing.T) {
		resp := performReq(t, app, http.MethodGet, Path, "bogus", "")
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestCreateGroup(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(t, db)

	caller, token := loginAs(t, db, "alice", "alice@example.com")
	other, _ := loginAs(t, db, "bob", "bob@example.com")

	t.Run("malformed body", func(t *testing.T) {
		resp := performReq(t, app, http.MethodPost, Path, token, "{")
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid role", func(t *testing.T) {
		resp := performReq(t, app, http.MethodPost, Path, token,
			`{"name":"chores","description":"household chores","users":[{"userId":1,"roleKind":"OWNER"}]}`)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("caller becomes admin", func(t *testing.T) {
		resp := performReq(t, app, http.MethodPost, Path, token,
			`{"name":"chores","description":"household chores"}`)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"name":"chores"`)

		memberships, err := taskgroupcontroller.ListByUser(db, caller.ID)
		require.NoError(t, err)
		require.Len(t, memberships, 1)
		assert.Equal(t, models.RoleKindAdmin, memberships[0].RoleKind)
	})

	t.Run("submitted members are kept", func(t *testing.T) {
		resp := performReq(t, app, http.MethodPost, Path, token,
			`{"name":"garden","description":"garden work","users":[{"userId":`+
				itoa(other.ID)+`,"roleKind":"DOER"}]}`)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusCreated, resp.StatusCode)

		memberships, err := taskgroupcontroller.ListByUser(db, other.ID)
		require.NoError(t, err)
		require.Len(t, memberships, 1)
		assert.Equal(t, models.RoleKindDoer, memberships[0].RoleKind)
	})
}

func TestDeleteGroup(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(t, db)

	admin, adminToken := loginAs(t, db, "alice", "alice@example.com")
	doer, doerToken := loginAs(t, db, "bob", "bob@example.com")
	_, outsiderToken := loginAs(t, db, "carol", "carol@example.com")

	group, err := taskgroupcontroller.Create(db, "chores", "household chores",
		[]taskgroupcontroller.MemberInput{
			{UserID: admin.ID, RoleKind: models.RoleKindAdmin},
			{UserID: doer.ID, RoleKind: models.RoleKindDoer},
		})
	require.NoError(t, err)

	target := Path + "/" + itoa(group.ID)

	t.Run("outsider is refused", func(t *testing.T) {
		resp := performReq(t, app, http.MethodDelete, target, outsiderToken, "")
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("doer is refused", func(t *testing.T) {
		resp := performReq(t, app, http.MethodDelete, target, doerToken, "")
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("admin succeeds", func(t *testing.T) {
		resp := performReq(t, app, http.MethodDelete, target, adminToken, "")
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		readResp := performReq(t, app, http.MethodGet, target, adminToken, "")
		defer func() { _ = readResp.Body.Close() }()

		assert.Equal(t, http.StatusNotFound, readResp.StatusCode)
	})
}

func TestReadGroup(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(t, db)

	admin, token := loginAs(t, db, "alice", "alice@example.com")

	group, err := taskgroupcontroller.Create(db, "chores", "household chores",
		[]taskgroupcontroller.MemberInput{{UserID: admin.ID, RoleKind: models.RoleKindAdmin}})
	require.NoError(t, err)

	t.Run("invalid id", func(t *testing.T) {
		resp := performReq(t, app, http.MethodGet, Path+"/abc", token, "")
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown id", func(t *testing.T) {
		resp := performReq(t, app, http.MethodGet, Path+"/999", token, "")
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("existing group", func(t *testing.T) {
		resp := performReq(t, app, http.MethodGet, Path+"/"+itoa(group.ID), token, "")
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"name":"chores"`)
	})
}

func TestListByUser(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(t, db)

	admin, token := loginAs(t, db, "alice", "alice@example.com")

	_, err := taskgroupcontroller.Create(db, "chores", "household chores",
		[]taskgroupcontroller.MemberInput{{UserID: admin.ID, RoleKind: models.RoleKindAdmin}})
	require.NoError(t, err)

	t.Run("unknown user", func(t *testing.T) {
		resp := performReq(t, app, http.MethodGet, "/users/999/task-groups", token, "")
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("memberships with expanded group and role", func(t *testing.T) {
		resp := performReq(t, app, http.MethodGet, "/users/"+itoa(admin.ID)+"/task-groups", token, "")
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		payload := string(body)
		assert.Contains(t, payload, `"name":"chores"`)
		assert.Contains(t, payload, `"code":"ADMIN"`)
	})
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
