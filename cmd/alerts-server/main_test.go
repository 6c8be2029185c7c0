package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetynet/alerts/internal/config"
	"github.com/safetynet/alerts/internal/platform/cache"
	"github.com/safetynet/alerts/internal/platform/metrics"
	"github.com/safetynet/alerts/internal/testutil/memstore"
	"github.com/safetynet/alerts/migrations"
)

const signingKey = "0123456789abcdef0123456789abcdef"

const janeJSON = `{"firstName":"Jane","lastName":"Doe","address":"1509 Culver St","city":"Culver","zip":"97451","phone":"841-874-0000","email":"jane@email.com"}`

// recordingStore is a cache that never hits and counts invalidations.
type recordingStore struct {
	mu          sync.Mutex
	invalidated int
}

func (s *recordingStore) Get(context.Context, string) (cache.Entry, error) { return cache.Entry{}, nil }
func (s *recordingStore) Set(context.Context, int64, string, []byte) error { return nil }
func (s *recordingStore) Invalidate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated++
	return nil
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidated
}

func testConfig() *config.Config {
	return &config.Config{
		Env:             "test",
		CORSOrigins:     []string{"*"},
		ShutdownTimeout: time.Second,
	}
}

func seededStores(t *testing.T) *stores {
	t.Helper()
	mem := memstore.New()
	s := &stores{
		addresses: mem.Addresses(),
		persons:   mem.Persons(),
		records:   mem.Records(),
		tx:        mem,
	}
	res, err := loadSeed(context.Background(), s, "", nil)
	require.NoError(t, err)
	require.False(t, res.Skipped)
	return s
}

func do(e *echo.Echo, method, target, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	e := newServer(testConfig(), zerolog.Nop(), seededStores(t), nil, metrics.New())

	rec := do(e, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"0.1.0"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_ActuatorInfo(t *testing.T) {
	e := newServer(testConfig(), zerolog.Nop(), seededStores(t), nil, metrics.New())

	rec := do(e, http.MethodGet, "/actuator/info", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"repositories":{"personsCount":23,"medicalRecordsCount":23,"addressesCount":11}}`, rec.Body.String())
}

func TestServer_MetricsEndpoint(t *testing.T) {
	e := newServer(testConfig(), zerolog.Nop(), seededStores(t), nil, metrics.New())

	require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/communityEmail?city=Culver", "").Code)

	rec := do(e, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `safetynet_http_requests_total{method="GET",route="/communityEmail",status="200"} 1`)
}

func TestServer_RoutesEveryResource(t *testing.T) {
	e := newServer(testConfig(), zerolog.Nop(), seededStores(t), nil, metrics.New())

	for _, target := range []string{
		"/person/1",
		"/medicalRecord/1",
		"/firestation/get?address=1509%20Culver%20St",
		"/firestation?stationNumber=3",
		"/childAlert?address=1509%20Culver%20St",
		"/phoneAlert?firestation=1",
		"/fire?address=1509%20Culver%20St",
		"/flood/stations?stations=1,2",
		"/personInfo?firstName=John&lastName=Boyd",
		"/communityEmail?city=Culver",
	} {
		t.Run(target, func(t *testing.T) {
			rec := do(e, http.MethodGet, target, "")
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}
}

func TestServer_WritesRequireTokenWhenKeyConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.AuthSigningKey = signingKey
	cfg.AuthIssuer = "safetynet"
	e := newServer(cfg, zerolog.Nop(), seededStores(t), nil, metrics.New())

	rec := do(e, http.MethodPost, "/person", janeJSON)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Reads stay open.
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/communityEmail?city=Culver", "").Code)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "dispatcher",
		Issuer:    "safetynet",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(signingKey))
	require.NoError(t, err)

	rec = do(e, http.MethodPost, "/person", janeJSON, echo.HeaderAuthorization, "Bearer "+signed)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestServer_WritesInvalidateAlertCache(t *testing.T) {
	store := &recordingStore{}
	e := newServer(testConfig(), zerolog.Nop(), seededStores(t), store, metrics.New())

	require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/phoneAlert?firestation=1", "").Code)
	assert.Equal(t, 0, store.count())

	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/person", janeJSON).Code)
	assert.Equal(t, 1, store.count())

	// A rejected write leaves the cache alone.
	require.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/person", `{"firstName":"Jane"}`).Code)
	assert.Equal(t, 1, store.count())
}

func TestServer_ErrorBody(t *testing.T) {
	e := newServer(testConfig(), zerolog.Nop(), seededStores(t), nil, metrics.New())

	rec := do(e, http.MethodGet, "/person/999", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(http.StatusNotFound), body["status"])
}

func TestServer_EveryRouteIsDocumented(t *testing.T) {
	e := newServer(testConfig(), zerolog.Nop(), seededStores(t), nil, metrics.New())
	docs := apiDocs()

	for _, r := range e.Routes() {
		if r.Method == echo.RouteNotFound || r.Path == "/openapi.json" || r.Path == "/docs" {
			continue
		}
		assert.True(t, docs.Documented(r.Method, r.Path), "%s %s is not documented", r.Method, r.Path)
	}
}

func TestServer_OpenAPI(t *testing.T) {
	e := newServer(testConfig(), zerolog.Nop(), seededStores(t), nil, metrics.New())

	rec := do(e, http.MethodGet, "/openapi.json", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var spec struct {
		Paths map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.Contains(t, spec.Paths, "/person/{id}")
	assert.Contains(t, spec.Paths["/firestation"], "get")
	assert.Contains(t, spec.Paths["/firestation"], "post")
}

func TestLoadSeed_SkipsWhenStoreHasData(t *testing.T) {
	s := seededStores(t)

	res, err := loadSeed(context.Background(), s, "", nil)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
}

func TestLoadSeed_MissingFile(t *testing.T) {
	mem := memstore.New()
	s := &stores{addresses: mem.Addresses(), persons: mem.Persons(), records: mem.Records(), tx: mem}

	_, err := loadSeed(context.Background(), s, "/nonexistent/data.json", nil)
	assert.ErrorContains(t, err, "read seed file")
}

func TestNewLogger_Level(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"warn":  zerolog.WarnLevel,
		"":      zerolog.InfoLevel,
		"bogus": zerolog.InfoLevel,
	}
	for in, want := range cases {
		logger := newLogger(&config.Config{Env: "production", LogLevel: in})
		assert.Equal(t, want, logger.GetLevel(), "LOG_LEVEL=%q", in)
	}
}

func TestMigrationsFS(t *testing.T) {
	assert.Equal(t, migrations.FS, migrationsFS(&config.Config{}))

	dir := t.TempDir()
	fsys := migrationsFS(&config.Config{MigrationsDir: dir})
	assert.NotEqual(t, migrations.FS, fsys)
}
