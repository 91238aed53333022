package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/database"
	"catalog/pkg/logger"
)

type fixedImage string

func (f fixedImage) FetchImageURL(_ context.Context) (string, error) {
	return string(f), nil
}

func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	logger.InitWithWriter("catalog-test", false, io.Discard)
	os.Exit(m.Run())
}

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	repo := repositories.NewTracingProductRepository(repositories.NewGORMProductRepository(db))
	productService := services.NewProductService(repo, fixedImage("https://img.example/x.jpg"))

	return newApp(appDeps{
		products: productService,
		pingDB: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
		registry: prometheus.NewRegistry(),
	})
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func TestProductLifecycle(t *testing.T) {
	app := setupTestApp(t)

	body := `{"name":"Widget","description":"A simple widget for testing","price":9.99,"stock":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &created))
	assert.Equal(t, "https://img.example/x.jpg", created["image_url"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/products/1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"name":"Widget"`)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/products/1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/products", nil), -1)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, readBody(t, resp))
}

func TestHealthCheck(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, `"status":"healthy"`)
	assert.Contains(t, body, `"database":"up"`)
}

func TestMetricsEndpoint(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/products", nil), -1)
	require.NoError(t, err)
	readBody(t, resp)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, "catalog_http_requests_total")
	assert.Contains(t, body, `route="/products"`)
	assert.Contains(t, body, "catalog_http_request_duration_seconds")
}

func TestRequestIDAndCORSHeaders(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	readBody(t, resp)

	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}

func TestPanicIsRecovered(t *testing.T) {
	app := setupTestApp(t)
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("unexpected state")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Internal server error"}`, readBody(t, resp))
}

func TestUnknownRoute(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/orders", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Cannot GET /orders"}`, readBody(t, resp))
}
