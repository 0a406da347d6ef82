package job

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sachin-security/sachin-security-sub000/internal/auth"
	"github.com/sachin-security/sachin-security-sub000/internal/database"
	"github.com/sachin-security/sachin-security-sub000/internal/middleware"
	"github.com/sachin-security/sachin-security-sub000/internal/model"
	"github.com/sachin-security/sachin-security-sub000/internal/testutil"
	"github.com/sachin-security/sachin-security-sub000/internal/utilities"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utilities.RegisterValidators()
	os.Exit(m.Run())
}

func setup(t *testing.T) (*gin.Engine, *database.MemoryStore, *http.Cookie) {
	t.Helper()
	store := database.NewMemoryStore()
	require.NoError(t, store.EnsureIndexes(context.Background(), model.UniqueIndexes))
	tokens := auth.NewJWTService(auth.TestSecret, time.Hour, nil)
	jc := NewJobController(store)

	r := gin.New()
	r.GET("/api/careers", jc.ListCareersHandler)
	r.GET("/api/careers/:id", jc.GetCareerHandler)

	api := r.Group("/api", middleware.RequestGate(tokens, middleware.GateConfig{API: true}))
	api.GET("/jobs", jc.ListJobsHandler)
	api.POST("/jobs", jc.CreateJobHandler)
	api.GET("/jobs/:id", jc.GetJobHandler)
	api.PUT("/jobs/:id", jc.UpdateJobHandler)
	api.DELETE("/jobs/:id", jc.DeleteJobHandler)

	return r, store, auth.GetAccessToken(t, tokens, auth.TestIdentity)
}

func jobBody(title, department, location, jobType string) gin.H {
	return gin.H{
		"title":       title,
		"department":  department,
		"location":    location,
		"type":        jobType,
		"experience":  "1-3 years",
		"description": "Guard the premises",
	}
}

func createJob(t *testing.T, r *gin.Engine, cookie *http.Cookie, body gin.H) map[string]interface{} {
	t.Helper()
	rec, resp := testutil.MakeJSONRequest(body, cookie, r, "/api/jobs", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return resp["data"].(map[string]interface{})
}

func TestCreateJobHandler_Success(t *testing.T) {
	r, _, cookie := setup(t)

	job := createJob(t, r, cookie, jobBody("Security Guard", "Operations", "Vadodara", "Full-time"))
	assert.Equal(t, "JOB001", job["id"])
	assert.Equal(t, float64(0), job["applicantsCount"])
	assert.Equal(t, "Active", job["status"])
	assert.Equal(t, "Vadodara", job["location"])
	assert.NotEmpty(t, job["_id"])
	assert.NotEmpty(t, job["postedDate"])
	assert.Equal(t, []interface{}{}, job["eligibility"])

	second := createJob(t, r, cookie, jobBody("Lady Guard", "Operations", "Surat", "Full-time"))
	assert.Equal(t, "JOB002", second["id"])
}

func TestCreateJobHandler_Validation(t *testing.T) {
	r, store, cookie := setup(t)

	rec, resp := testutil.MakeJSONRequest(gin.H{"title": "Security Guard", "location": "Vadodara"}, cookie, r, "/api/jobs", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Missing required fields: department, type, experience, description", resp["error"])

	body := jobBody("Security Guard", "Operations", "Vadodara", "Full-time")
	body["status"] = "Archived"
	rec, resp = testutil.MakeJSONRequest(body, cookie, r, "/api/jobs", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status must be one of: Active, Inactive", resp["error"])

	n, err := store.Collection(model.CollectionJobs).Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestJobHandlers_RequireAuth(t *testing.T) {
	r, _, _ := setup(t)

	rec, resp := testutil.MakeJSONRequest(jobBody("a", "b", "c", "d"), nil, r, "/api/jobs", http.MethodPost)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", resp["error"])

	rec, _ = testutil.MakeJSONRequest(nil, nil, r, "/api/jobs", http.MethodGet)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListJobsHandler_Filters(t *testing.T) {
	r, _, cookie := setup(t)

	createJob(t, r, cookie, jobBody("Security Guard", "Operations", "Vadodara", "Full-time"))
	createJob(t, r, cookie, jobBody("Lady Security Guard", "Operations", "Ahmedabad", "Part-time"))
	inactive := jobBody("Site Supervisor", "Management", "Vadodara West", "Full-time")
	inactive["status"] = "Inactive"
	createJob(t, r, cookie, inactive)

	tests := []struct {
		query string
		ids   []interface{}
	}{
		{"", []interface{}{"JOB003", "JOB002", "JOB001"}},
		{"?status=Active", []interface{}{"JOB002", "JOB001"}},
		{"?department=Management", []interface{}{"JOB003"}},
		{"?type=Part-time", []interface{}{"JOB002"}},
		{"?location=vadodara", []interface{}{"JOB003", "JOB001"}},
		{"?search=GUARD&location=ahmed", []interface{}{"JOB002"}},
		{"?search=driver", []interface{}{}},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			rec, resp := testutil.MakeJSONRequest(nil, cookie, r, "/api/jobs"+tc.query, http.MethodGet)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, float64(len(tc.ids)), resp["count"])

			ids := []interface{}{}
			for _, j := range resp["data"].([]interface{}) {
				ids = append(ids, j.(map[string]interface{})["id"])
			}
			assert.Equal(t, tc.ids, ids)
		})
	}
}

func TestCareersHandlers_OnlyActive(t *testing.T) {
	r, _, cookie := setup(t)

	createJob(t, r, cookie, jobBody("Security Guard", "Operations", "Vadodara", "Full-time"))
	inactive := jobBody("Site Supervisor", "Management", "Vadodara", "Full-time")
	inactive["status"] = "Inactive"
	createJob(t, r, cookie, inactive)

	rec, resp := testutil.MakeJSONRequest(nil, nil, r, "/api/careers?status=Inactive", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), resp["count"])

	rec, resp = testutil.MakeJSONRequest(nil, nil, r, "/api/careers/JOB001", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Security Guard", resp["data"].(map[string]interface{})["title"])

	rec, resp = testutil.MakeJSONRequest(nil, nil, r, "/api/careers/JOB002", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Job not found", resp["error"])
}

func TestGetJobHandler(t *testing.T) {
	r, _, cookie := setup(t)
	createJob(t, r, cookie, jobBody("Security Guard", "Operations", "Vadodara", "Full-time"))

	rec, resp := testutil.MakeJSONRequest(nil, cookie, r, "/api/jobs/JOB001", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "JOB001", resp["data"].(map[string]interface{})["id"])

	rec, resp = testutil.MakeJSONRequest(nil, cookie, r, "/api/jobs/JOB999", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, map[string]interface{}{"success": false, "error": "Job not found"}, resp)
}

func TestUpdateJobHandler(t *testing.T) {
	r, _, cookie := setup(t)
	created := createJob(t, r, cookie, jobBody("Security Guard", "Operations", "Vadodara", "Full-time"))

	rec, resp := testutil.MakeJSONRequest(gin.H{"status": "Inactive", "salary": "18000"}, cookie, r, "/api/jobs/JOB001", http.MethodPut)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := resp["data"].(map[string]interface{})
	assert.Equal(t, "Inactive", updated["status"])
	assert.Equal(t, "18000", updated["salary"])
	assert.Equal(t, "Security Guard", updated["title"])
	assert.Equal(t, created["createdAt"], updated["createdAt"])
	assert.NotEqual(t, created["updatedAt"], updated["updatedAt"])

	rec, resp = testutil.MakeJSONRequest(gin.H{"title": "  "}, cookie, r, "/api/jobs/JOB001", http.MethodPut)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title cannot be empty", resp["error"])

	rec, resp = testutil.MakeJSONRequest(gin.H{}, cookie, r, "/api/jobs/JOB001", http.MethodPut)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No fields to update", resp["error"])

	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "Closed"}, cookie, r, "/api/jobs/JOB001", http.MethodPut)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = testutil.MakeJSONRequest(gin.H{"salary": "1"}, cookie, r, "/api/jobs/JOB404", http.MethodPut)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteJobHandler(t *testing.T) {
	r, _, cookie := setup(t)
	createJob(t, r, cookie, jobBody("Security Guard", "Operations", "Vadodara", "Full-time"))

	rec, resp := testutil.MakeJSONRequest(nil, cookie, r, "/api/jobs/JOB001", http.MethodDelete)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Job deleted successfully", resp["message"])

	rec, _ = testutil.MakeJSONRequest(nil, cookie, r, "/api/jobs/JOB001", http.MethodDelete)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// ids are never reused after a delete
	next := createJob(t, r, cookie, jobBody("Bouncer", "Events", "Vadodara", "Contract"))
	assert.Equal(t, "JOB002", next["id"])
}

func TestReconcileApplicantCounts(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	jobs := store.Collection(model.CollectionJobs)
	applicants := store.Collection(model.CollectionApplicants)

	for _, j := range []model.Job{
		{ID: "JOB001", ApplicantsCount: 0},
		{ID: "JOB002", ApplicantsCount: 5},
		{ID: "JOB003", ApplicantsCount: 1},
	} {
		_, err := jobs.Insert(ctx, j)
		require.NoError(t, err)
	}
	for _, a := range []model.Applicant{
		{ID: "APP0001", ApplicantDetails: model.ApplicantDetails{JobID: "JOB001", Email: "a@example.com"}},
		{ID: "APP0002", ApplicantDetails: model.ApplicantDetails{JobID: "JOB001", Email: "b@example.com"}},
		{ID: "APP0003", ApplicantDetails: model.ApplicantDetails{JobID: "JOB003", Email: "a@example.com"}},
	} {
		_, err := applicants.Insert(ctx, a)
		require.NoError(t, err)
	}

	fixes, err := ReconcileApplicantCounts(ctx, store, slog.Default())
	require.NoError(t, err)
	assert.ElementsMatch(t, []CountFix{
		{JobID: "JOB001", From: 0, To: 2},
		{JobID: "JOB002", From: 5, To: 0},
	}, fixes)

	var job model.Job
	require.NoError(t, jobs.FindOne(ctx, database.ByID("JOB002"), &job))
	assert.Equal(t, 0, job.ApplicantsCount)

	fixes, err = ReconcileApplicantCounts(ctx, store, slog.Default())
	require.NoError(t, err)
	assert.Empty(t, fixes)
}
