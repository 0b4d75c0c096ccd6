package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/angelmondragon/postoko-backend/internal/auth"
	"github.com/angelmondragon/postoko-backend/internal/inventory"
	"github.com/angelmondragon/postoko-backend/internal/invoices"
	"github.com/angelmondragon/postoko-backend/internal/media"
	product "github.com/angelmondragon/postoko-backend/internal/products"
	"github.com/angelmondragon/postoko-backend/internal/users"
	"github.com/angelmondragon/postoko-backend/pkg/config"
	"github.com/angelmondragon/postoko-backend/pkg/db/dbtest"
	"github.com/angelmondragon/postoko-backend/pkg/logger"
	"github.com/angelmondragon/postoko-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/postoko-backend/pkg/redis"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiServer struct {
	*httptest.Server
	client    *http.Client
	uploadDir string
	cleaner   *media.Cleaner
}

type serverOptions struct {
	redis bool
}

func newAPIServer(t *testing.T, opts serverOptions) *apiServer {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	client := dbtest.New(t)
	uploadDir := t.TempDir()

	cfg := &config.Config{
		App:      config.AppConfig{Env: "test", APIPrefix: "/api"},
		JWT:      config.JWTConfig{Secret: "router-secret", Issuer: "postoko", ExpirationMinutes: 1440},
		Password: config.PasswordConfig{BcryptCost: bcrypt.MinCost},
		Cookie:   config.CookieConfig{Name: "token", Path: "/", Secure: "auto", SameSite: "lax"},
		Media:    config.MediaConfig{UploadDir: uploadDir, URLPrefix: "/uploads", MaxUploadMB: 1},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	store, err := media.NewStore(uploadDir, cfg.Media.URLPrefix, cfg.Media.MaxUploadBytes())
	require.NoError(t, err)
	registry := prometheus.NewRegistry()
	cleaner, err := media.NewCleaner(store, media.CleanerOptions{
		Workers:    2,
		MaxRetries: 1,
		Metrics:    metrics.NewCleanupMetrics(registry),
	}, logg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleaner.Close() })

	registerSvc, err := auth.NewRegisterService(auth.RegisterServiceParams{DB: client, PasswordConfig: cfg.Password})
	require.NoError(t, err)
	authSvc, err := auth.NewService(auth.ServiceParams{UserRepo: users.NewRepository(client.DB()), JWTConfig: cfg.JWT, PasswordConfig: cfg.Password})
	require.NoError(t, err)
	inventorySvc, err := inventory.NewService(client)
	require.NoError(t, err)
	invoiceSvc, err := invoices.NewService(client)
	require.NoError(t, err)

	deps := Dependencies{
		Config:           cfg,
		Logger:           logg,
		DB:               client,
		RegisterService:  registerSvc,
		AuthService:      authSvc,
		InventoryService: inventorySvc,
		InvoiceService:   invoiceSvc,
		Images:           store,
		Metrics:          metrics.NewHTTPMetrics(registry),
		Gatherer:         registry,
	}
	if opts.redis {
		mr := miniredis.RunT(t)
		rc, err := pkgredis.New(context.Background(), config.RedisConfig{Address: mr.Addr()}, logg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = rc.Close() })
		deps.Redis = rc
	}

	// The product service needs the public base URL, which is only known once
	// the server is listening.
	handler := &lateHandler{}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.App.BaseURL = srv.URL
	productSvc, err := product.NewService(product.ServiceParams{
		DB:      client,
		Images:  store,
		Cleaner: cleaner,
		BaseURL: cfg.App.BaseURL,
		Logger:  logg,
	})
	require.NoError(t, err)
	deps.ProductService = productSvc
	handler.h = NewRouter(deps)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &apiServer{
		Server:    srv,
		client:    &http.Client{Jar: jar},
		uploadDir: uploadDir,
		cleaner:   cleaner,
	}
}

type lateHandler struct{ h http.Handler }

func (l *lateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) { l.h.ServeHTTP(w, r) }

func (s *apiServer) do(t *testing.T, method, path string, body io.Reader, contentType string, headers ...string) (*http.Response, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	} else {
		env.Message = string(raw)
	}
	return resp, env
}

func (s *apiServer) json(t *testing.T, method, path, body string, headers ...string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	return s.do(t, method, path, reader, "application/json", headers...)
}

func (s *apiServer) login(t *testing.T) {
	t.Helper()
	resp, _ := s.json(t, http.MethodPost, "/api/auth/register", `{"email":"owner@postoko.test","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.json(t, http.MethodPost, "/api/auth/login", `{"email":"owner@postoko.test","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func productForm(t *testing.T, fields map[string]string, image []byte) (io.Reader, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "item.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

func TestRootAndHealth(t *testing.T) {
	s := newAPIServer(t, serverOptions{})

	resp, env := s.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "PosToko API is Running...", env.Message)

	resp, _ = s.do(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = s.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
}

func TestSessionLifecycle(t *testing.T) {
	s := newAPIServer(t, serverOptions{})

	resp, env := s.json(t, http.MethodGet, "/api/inventory", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", env.Message)

	resp, env = s.json(t, http.MethodPost, "/api/auth/register", `{"email":"Owner@PosToko.test","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Register successful", env.Message)
	registered := decodeData[map[string]string](t, env)
	assert.Equal(t, "owner@postoko.test", registered["email"])

	resp, env = s.json(t, http.MethodPost, "/api/auth/register", `{"email":"owner@postoko.test","password":"other"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email is already existed", env.Message)

	resp, env = s.json(t, http.MethodPost, "/api/auth/login", `{"email":"owner@postoko.test","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	wrongPassword := env.Message
	resp, env = s.json(t, http.MethodPost, "/api/auth/login", `{"email":"ghost@postoko.test","password":"s3cret"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, wrongPassword, env.Message)
	assert.Equal(t, "Invalid credentials", env.Message)

	resp, env = s.json(t, http.MethodPost, "/api/auth/login", `{"email":"owner@postoko.test","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Login Successful", env.Message)
	loggedIn := decodeData[map[string]string](t, env)
	assert.Equal(t, registered["id"], loggedIn["user_id"])
	assert.NotEmpty(t, loggedIn["token"])

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, session.SameSite)
	assert.Equal(t, 24*60*60, session.MaxAge)
	assert.False(t, session.Secure)

	resp, env = s.json(t, http.MethodGet, "/api/inventory", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "No inventory yet", env.Message)
	assert.Equal(t, "[]", string(env.Data))

	resp, env = s.json(t, http.MethodPost, "/api/auth/logout", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logout successful", env.Message)

	resp, _ = s.json(t, http.MethodGet, "/api/inventory", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.json(t, http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProductImageLifecycle(t *testing.T) {
	s := newAPIServer(t, serverOptions{})
	s.login(t)

	resp, env := s.json(t, http.MethodPost, "/api/inventory", `{"name":"Beverages","description":"Drinks"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	inv := decodeData[map[string]any](t, env)
	invID := inv["id"].(string)

	resp, env = s.json(t, http.MethodPost, "/api/inventory", `{"name":"Beverages"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Beverages already exists", env.Message)

	body, ct := productForm(t, map[string]string{"inventoryId": invID, "name": "Cola", "price": "12000", "stock": "4"}, nil)
	resp, env = s.do(t, http.MethodPost, "/api/products", body, ct)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Product image is required", env.Message)

	body, ct = productForm(t, map[string]string{"inventoryId": invID, "name": "Cola", "description": "can", "price": "12000", "stock": "4"}, pngBytes)
	resp, env = s.do(t, http.MethodPost, "/api/products", body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Equal(t, "Product created", env.Message)
	created := decodeData[map[string]any](t, env)
	productID := created["id"].(string)
	firstImage := created["image"].(string)
	require.True(t, strings.HasPrefix(firstImage, s.URL+"/uploads/"), firstImage)
	assert.Equal(t, invID, created["inventoryId"])

	imgResp, err := s.client.Get(firstImage)
	require.NoError(t, err)
	served, err := io.ReadAll(imgResp.Body)
	require.NoError(t, err)
	imgResp.Body.Close()
	assert.Equal(t, http.StatusOK, imgResp.StatusCode)
	assert.Equal(t, pngBytes, served)

	resp, env = s.json(t, http.MethodDelete, "/api/inventory/"+invID, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)

	body, ct = productForm(t, map[string]string{"inventoryId": invID, "name": "Cola Zero", "price": "13000", "stock": "5"}, pngBytes)
	resp, env = s.do(t, http.MethodPut, "/api/products/"+productID, body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	updated := decodeData[map[string]any](t, env)
	secondImage := updated["image"].(string)
	assert.NotEqual(t, firstImage, secondImage)
	s.cleaner.Wait()
	assertFiles(t, s.uploadDir, 1)

	resp, env = s.json(t, http.MethodGet, "/api/products/"+productID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decodeData[map[string]any](t, env)
	assert.Equal(t, "Cola Zero", fetched["name"])
	assert.Equal(t, secondImage, fetched["image"])

	resp, env = s.json(t, http.MethodDelete, "/api/products/"+productID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Product deleted", env.Message)
	s.cleaner.Wait()
	assertFiles(t, s.uploadDir, 0)

	resp, env = s.do(t, http.MethodGet, "/uploads/"+secondImage[strings.LastIndex(secondImage, "/")+1:], nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(env.Message, "Image not found: /"), env.Message)

	resp, env = s.json(t, http.MethodDelete, "/api/inventory/"+invID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Inventory deleted", env.Message)
}

func TestInvoiceReadPaths(t *testing.T) {
	s := newAPIServer(t, serverOptions{})
	s.login(t)

	resp, env := s.json(t, http.MethodGet, "/api/invoices", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User haven't checkout yet", env.Message)

	resp, env = s.json(t, http.MethodGet, "/api/invoices/email/owner@postoko.test", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "owner@postoko.test haven't checkout yet", env.Message)

	resp, env = s.json(t, http.MethodGet, "/api/invoices/not-an-id", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Id not found", env.Message)
}

func TestIdempotentInventoryCreate(t *testing.T) {
	s := newAPIServer(t, serverOptions{redis: true})
	s.login(t)

	resp, first := s.json(t, http.MethodPost, "/api/inventory", `{"name":"Snacks"}`, "Idempotency-Key", "abc-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, replay := s.json(t, http.MethodPost, "/api/inventory", `{"name":"Snacks"}`, "Idempotency-Key", "abc-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("Idempotent-Replayed"))
	assert.JSONEq(t, string(first.Data), string(replay.Data))

	resp, _ = s.json(t, http.MethodPost, "/api/inventory", `{"name":"Other"}`, "Idempotency-Key", "abc-1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newAPIServer(t, serverOptions{})

	s.do(t, http.MethodGet, "/health/live", nil, "")
	resp, env := s.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, env.Message, `http_requests_total{method="GET",route="/health/live",status="200"}`)
}

func assertFiles(t *testing.T, dir string, want int) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, want)
}
