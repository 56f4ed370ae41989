package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/legendsansar/legendsansar/internal/api"
	"github.com/legendsansar/legendsansar/internal/auth"
	"github.com/legendsansar/legendsansar/internal/config"
	"github.com/legendsansar/legendsansar/internal/db"
	"github.com/legendsansar/legendsansar/internal/models"
	"github.com/legendsansar/legendsansar/pkg/logger"
	"github.com/legendsansar/legendsansar/pkg/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	redis *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	auth.SetSecret("test-secret")

	log, err := logger.NewLogger(logger.WithOutputDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(log.Close)

	mr := miniredis.RunT(t)
	rclient, err := db.NewRedis(context.Background(), mr.Addr(), "")
	require.NoError(t, err)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.RegisterModels()...))

	cfg := &config.Config{
		ClientURL:   "http://localhost:5173",
		CORSOrigins: "http://localhost:5173",
		EmailFrom:   "Legend Sansar <no-reply@legendsansar.local>",
	}

	app := api.New(api.Deps{
		Config: cfg,
		Logger: log,
		DB:     gdb,
		Redis:  rclient,
	})

	return &testEnv{app: app, db: gdb, redis: mr}
}

// seedAccount creates a verified user directly in the database and returns it
// with a valid bearer token.
func (e *testEnv) seedAccount(t *testing.T, username, email, password string, opts ...models.UserOption) (*models.User, string) {
	t.Helper()

	hashed, err := utils.HashPassword(password)
	require.NoError(t, err)

	user, err := models.NewUser(context.Background(), e.db, username, email, hashed, opts...)
	require.NoError(t, err)
	user.IsVerified = true
	require.NoError(t, models.SaveUser(context.Background(), nil, e.db, user))

	token, err := auth.GenerateToken(user.ID.String())
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) seedFolktale(t *testing.T, title string) *models.Folktale {
	t.Helper()
	f, err := models.NewFolktale(context.Background(), e.db, title,
		"Once upon a time in the valley...", "Himalayas", "Legend", "All Ages",
		"https://assets.local/folktales/"+strings.ToLower(strings.ReplaceAll(title, " ", "-"))+".jpg")
	require.NoError(t, err)
	return f
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) doForm(t *testing.T, method, path, token string, fields map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out), "body: %s", data)
	return out
}

func decodeList(t *testing.T, resp *http.Response) []map[string]interface{} {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out), "body: %s", data)
	return out
}

// redisKeyWithPrefix scans miniredis for the single key carrying the prefix.
func (e *testEnv) redisKeyWithPrefix(t *testing.T, prefix string) string {
	t.Helper()
	for _, key := range e.redis.Keys() {
		if strings.HasPrefix(key, prefix) {
			return key
		}
	}
	t.Fatalf("no redis key with prefix %q", prefix)
	return ""
}
