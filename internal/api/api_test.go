package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"notebook-loans-backend/config"
	"notebook-loans-backend/internal/auth"
	"notebook-loans-backend/internal/db"
	"notebook-loans-backend/internal/media"
	"notebook-loans-backend/internal/model"
	"notebook-loans-backend/internal/session"
	"notebook-loans-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.Cost = bcrypt.MinCost
}

const adminPassword = "admin-secret"

type testEnv struct {
	router     *gin.Engine
	store      store.Store
	sessions   *session.MemoryStore
	mediaRoot  string
	admin      *model.User
	tech       *model.User
	adminToken string
	techToken  string
}

type envOption func(*Deps)

func withWebpush(opts *webpush.Options) envOption {
	return func(d *Deps) { d.Webpush = opts }
}

func withToday(day time.Time) envOption {
	return func(d *Deps) { d.Now = func() time.Time { return day.Add(12 * time.Hour) } }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// One connection keeps shared-cache SQLite free of table locks.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))

	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := store.NewGormStore(gdb, store.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))

	env := &testEnv{
		store:     s,
		sessions:  session.NewMemoryStore(time.Hour),
		mediaRoot: t.TempDir(),
	}
	env.admin = env.mustUser(t, "admin", model.RoleAdmin, adminPassword)
	env.tech = env.mustUser(t, "tecnico", model.RoleTechnician, "tecnico-secret")
	env.adminToken = env.mustSession(t, env.admin.ID)
	env.techToken = env.mustSession(t, env.tech.ID)

	cfg := &config.Config{}
	cfg.Server.BasePath = "/api"
	cfg.Server.RateLimitPerSec = 10000
	cfg.Server.RateLimitBurst = 10000
	cfg.Server.LoginRatePerMin = 60000
	cfg.Server.CacheTTLSeconds = 60
	cfg.Pagination.DefaultPageSize = 50
	cfg.Pagination.MaxPageSize = 500

	deps := Deps{
		Store:    s,
		Sessions: env.sessions,
		Media:    media.NewStorage(env.mediaRoot, "/media", false),
		Config:   cfg,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	env.router = NewRouter(deps)
	return env
}

func (e *testEnv) mustUser(t *testing.T, username string, role model.UserRole, password string) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := &model.User{Username: username, Role: role, IsActive: true, PasswordHash: hash}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) mustSession(t *testing.T, userID int64) string {
	t.Helper()
	sess, err := e.sessions.Create(context.Background(), userID)
	require.NoError(t, err)
	return sess.Token
}

// do sends a JSON request; an empty token sends no credentials.
func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// mustCreate posts body and returns the new record's id.
func (e *testEnv) mustCreate(t *testing.T, path, body string) int64 {
	t.Helper()
	w := e.do(http.MethodPost, path, e.adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return int64(decodeJSON(t, w)["id"].(float64))
}

func (e *testEnv) mustNotebook(t *testing.T, tag, serial, status string) int64 {
	t.Helper()
	return e.mustCreate(t, "/api/notebooks/", `{"asset_tag":"`+tag+`","brand_model":"Dell Latitude","serial_number":"`+serial+`","status":"`+status+`"}`)
}

func loanBody(notebooks, requester, status, due string) string {
	var b bytes.Buffer
	b.WriteString(`{"notebooks":` + notebooks + `,"loan_type":"individual","requester_name":"` + requester + `",`)
	b.WriteString(`"department":"SME","checkout_date":"2024-03-01","due_date":"` + due + `","responsible_technician":"João"`)
	if status != "" {
		b.WriteString(`,"status":"` + status + `"`)
	}
	b.WriteString(`}`)
	return b.String()
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
