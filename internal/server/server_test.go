package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sachin-security/sachin-security-sub000/internal/auth"
	"github.com/sachin-security/sachin-security-sub000/internal/config"
	"github.com/sachin-security/sachin-security-sub000/internal/database"
	"github.com/sachin-security/sachin-security-sub000/internal/model"
	"github.com/sachin-security/sachin-security-sub000/internal/storage"
	"github.com/sachin-security/sachin-security-sub000/internal/testutil"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var hrIdentity = model.Identity{UserID: "hr", DisplayName: "HR Desk", Role: model.RoleHR, Password: "hr-pass"}

func newTestServer(t *testing.T) (*MyServer, http.Handler) {
	t.Helper()

	adminDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(adminDir, "index.html"), []byte("<h1>dashboard</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(adminDir, "login.html"), []byte("<h1>login</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(adminDir, "employees.html"), []byte("<h1>employees</h1>"), 0o600))

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, AllowOrigins: []string{"http://localhost:3000"}, AdminDir: adminDir},
		Auth: config.AuthConfig{
			Secret:     auth.TestSecret,
			TokenTTL:   time.Hour,
			Revocation: config.RevocationMemory,
			Identities: []model.Identity{auth.TestIdentity, hrIdentity},
		},
		Database:  config.DatabaseConfig{Driver: config.DriverMemory},
		Storage:   config.StorageConfig{Backend: config.StorageDatabase, MaxUploadBytes: 1 << 20},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000},
	}

	db := database.NewMemoryStore()
	objects := storage.NewDatabaseStore(db.Collection(model.CollectionBlobs))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	revoker := auth.NewInMemoryBlacklistStore()
	t.Cleanup(func() { _ = revoker.Close() })

	s := New(cfg, db, objects, revoker, logger)
	return s, s.RegisterRoutes()
}

func login(t *testing.T, h http.Handler, identity model.Identity) *http.Cookie {
	t.Helper()
	rec, resp := testutil.MakeJSONRequest(gin.H{"userID": identity.UserID, "password": identity.Password}, nil, h, "/api/login", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, resp["isAuthenticated"])
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("login did not set the auth cookie")
	return nil
}

func get(h http.Handler, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServer(t *testing.T) {
	s, _ := newTestServer(t)
	srv := s.NewServer()
	assert.Equal(t, ":8080", srv.Addr)
	assert.NotNil(t, srv.Handler)
	assert.Equal(t, time.Minute, srv.IdleTimeout)
}

func TestOperationalEndpoints(t *testing.T) {
	_, h := newTestServer(t)

	rec := get(h, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"up"`)

	rec = get(h, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "backoffice_http_requests_total")

	rec = get(h, "/swagger/doc.json", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/careers")

	rec = get(h, "/health", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestAPI_LoginSessionLogout(t *testing.T) {
	_, h := newTestServer(t)

	rec, resp := testutil.MakeJSONRequest(nil, nil, h, "/api/session", http.MethodGet)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", resp["error"])

	cookie := login(t, h, auth.TestIdentity)

	rec, resp = testutil.MakeJSONRequest(nil, cookie, h, "/api/session", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, auth.TestIdentity.UserID, data["userID"])
	assert.Equal(t, model.RoleAdmin, data["role"])

	rec, _ = testutil.MakeJSONRequest(gin.H{"logOut": true}, cookie, h, "/api/login", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, cookie, h, "/api/session", http.MethodGet)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "revoked token must not pass the gate")
}

func TestAPI_HiringFlow(t *testing.T) {
	_, h := newTestServer(t)
	cookie := login(t, h, auth.TestIdentity)

	job := gin.H{
		"title":       "Security Guard",
		"department":  "Operations",
		"location":    "Vadodara",
		"type":        "Full-time",
		"experience":  "1-3 years",
		"description": "Night shift guard for a residential society",
	}
	rec, resp := testutil.MakeJSONRequest(job, nil, h, "/api/jobs", http.MethodPost)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, resp = testutil.MakeJSONRequest(job, cookie, h, "/api/jobs", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "JOB001", resp["data"].(map[string]interface{})["id"])

	rec, resp = testutil.MakeJSONRequest(nil, nil, h, "/api/careers", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, resp["count"])

	application := gin.H{
		"jobId":       "JOB001",
		"fullName":    "Ravi Patel",
		"email":       "ravi@example.com",
		"phone":       "9876543210",
		"dateOfBirth": "1995-04-12",
		"education":   "HSC",
		"experience":  "2 years",
		"address":     "Alkapuri, Vadodara",
		"resumeUrl":   "/api/download/resume/abc",
	}
	rec, resp = testutil.MakeJSONRequest(application, nil, h, "/api/applicants/apply", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "APP0001", resp["data"].(map[string]interface{})["id"])

	rec, resp = testutil.MakeJSONRequest(nil, cookie, h, "/api/jobs/JOB001", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, resp["data"].(map[string]interface{})["applicantsCount"])

	rec, _ = testutil.MakeJSONRequest(gin.H{"id": "APP0001", "status": "Shortlisted"}, cookie, h, "/api/applicants", http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, resp = testutil.MakeJSONRequest(nil, cookie, h, "/api/applicants/APP0001", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Shortlisted", resp["data"].(map[string]interface{})["status"])
}

func TestAPI_RoleRestrictedDeletes(t *testing.T) {
	_, h := newTestServer(t)
	admin := login(t, h, auth.TestIdentity)
	hr := login(t, h, hrIdentity)

	job := gin.H{
		"title":       "Supervisor",
		"department":  "Operations",
		"location":    "Surat",
		"type":        "Full-time",
		"experience":  "5 years",
		"description": "Shift supervisor",
	}
	rec, _ := testutil.MakeJSONRequest(job, hr, h, "/api/jobs", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, resp := testutil.MakeJSONRequest(nil, hr, h, "/api/jobs/JOB001", http.MethodDelete)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "User doesn't have permission to access", resp["error"])

	rec, _ = testutil.MakeJSONRequest(nil, admin, h, "/api/jobs/JOB001", http.MethodDelete)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminPages(t *testing.T) {
	_, h := newTestServer(t)

	rec := get(h, "/admin/employees", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, AdminLogin, rec.Header().Get("Location"))

	rec = get(h, AdminLogin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "login")

	cookie := login(t, h, auth.TestIdentity)

	rec = get(h, AdminLogin, cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, AdminHome, rec.Header().Get("Location"))

	rec = get(h, AdminHome, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dashboard")

	rec = get(h, "/admin/employees", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "employees")

	rec = get(h, "/admin/missing", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
