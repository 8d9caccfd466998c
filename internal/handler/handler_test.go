package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"sprintsync/internal/config"
	"sprintsync/internal/database"
	"sprintsync/internal/router"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		JWT:      config.JWTConfig{Secret: "handler-test-secret", Issuer: "sprintsync", ExpireHours: 1},
		Security: config.SecurityConfig{BcryptCost: 10},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"*"}},
		OpenAI: config.OpenAIConfig{
			BaseURL: "https://api.openai.com/v1/chat/completions",
			Model:   "gpt-3.5-turbo",
		},
		RateLimit: config.RateLimitConfig{PerMinute: 100000},
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// a single connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// newFileTestDB opens a file-backed database so concurrent requests run
// on separate connections instead of serializing on the single in-memory
// handle.
func newFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") +
		"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newRouterWithDB(t, newTestDB(t))
}

func newRouterWithDB(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	return router.Setup(testConfig(), db, discard)
}

// do performs a JSON request against the test router.
func do(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

type userPayload struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

type authResp struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type taskPayload struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	TotalMinutes int    `json:"totalMinutes"`
	UserID       *uint  `json:"userId"`
}

type errResp struct {
	Error string `json:"error"`
}

// register creates a user via the API and returns its token and id.
func register(t *testing.T, r *gin.Engine, username, password string, isAdmin bool) (string, uint) {
	t.Helper()

	w := do(t, r, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"username": username,
		"password": password,
		"isAdmin":  isAdmin,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %q: status %d body %s", username, w.Code, w.Body.String())
	}

	var resp authResp
	decode(t, w, &resp)
	if resp.Token == "" {
		t.Fatalf("register %q: empty token", username)
	}
	return resp.Token, resp.User.ID
}

// createTask creates a task via the API and returns its payload.
func createTask(t *testing.T, r *gin.Engine, token string, body map[string]interface{}) taskPayload {
	t.Helper()

	w := do(t, r, http.MethodPost, "/api/tasks", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create task: status %d body %s", w.Code, w.Body.String())
	}
	var task taskPayload
	decode(t, w, &task)
	return task
}
