package utilities

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sachin-security/sachin-security-sub000/internal/database"
	"github.com/sachin-security/sachin-security-sub000/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ValidationError("bad"), http.StatusBadRequest},
		{NotFoundError("gone"), http.StatusNotFound},
		{ConflictError("dup"), http.StatusConflict},
		{AuthFailure("nope"), http.StatusUnauthorized},
		{Unhandled(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFoundError("gone")), http.StatusNotFound},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}
}

func TestFromStore(t *testing.T) {
	err := FromStore(fmt.Errorf("find: %w", database.ErrNotFound), "Job not found", "")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.EqualError(t, err, "Job not found")
	assert.ErrorIs(t, err, database.ErrNotFound)

	err = FromStore(database.ErrDuplicate, "", "Already applied")
	assert.Equal(t, KindConflict, KindOf(err))

	err = FromStore(errors.New("connection reset"), "", "")
	assert.Equal(t, KindUnhandled, KindOf(err))
	assert.EqualError(t, err, "Internal server error: connection reset")

	assert.NoError(t, FromStore(nil, "", ""))
}

func TestBindJSON_MissingRequiredFields(t *testing.T) {
	handler := func(c *gin.Context) {
		var payload model.SupportDetails
		if err := BindJSON(c, &payload); err != nil {
			RespondError(c, err)
			return
		}
		RespondData(c, http.StatusOK, payload)
	}

	rec, resp, err := SimulateAPICall(handler, "/contact", http.MethodPost, gin.H{"name": "Ravi"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Missing required fields: email, subject, message", resp["error"])
}

func TestBindJSON_PatternValidators(t *testing.T) {
	handler := func(c *gin.Context) {
		var payload model.SupportDetails
		if err := BindJSON(c, &payload); err != nil {
			RespondError(c, err)
			return
		}
		RespondData(c, http.StatusOK, payload)
	}

	body := gin.H{"name": "Ravi", "email": "ravi@example.com", "phone": "12345", "subject": "Quote", "message": "Need guards"}
	rec, resp, err := SimulateAPICall(handler, "/contact", http.MethodPost, body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid phone number in phone", resp["error"])

	body["phone"] = "+91 9876543210"
	rec, resp, err = SimulateAPICall(handler, "/contact", http.MethodPost, body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp["success"])
}

func TestPatterns(t *testing.T) {
	assert.True(t, aadharPattern.MatchString("123456789012"))
	assert.False(t, aadharPattern.MatchString("1234 5678 9012"))
	assert.True(t, panPattern.MatchString("ABCDE1234F"))
	assert.False(t, panPattern.MatchString("abcde1234f"))
	assert.True(t, ifscPattern.MatchString("SBIN0001234"))
	assert.True(t, pincodePattern.MatchString("390001"))
	assert.False(t, pincodePattern.MatchString("090001"))
}

func TestRespondList_EmptyHasZeroCount(t *testing.T) {
	handler := func(c *gin.Context) {
		RespondList[model.Job](c, nil)
	}
	rec, resp, err := SimulateAPICall(handler, "/jobs", http.MethodGet, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), resp["count"])
	assert.Equal(t, []interface{}{}, resp["data"])
}

func TestSimulateAPICall_Options(t *testing.T) {
	handler := func(c *gin.Context) {
		session, err := ExtractSession(c)
		if err != nil {
			RespondError(c, AuthFailure("Unauthorized"))
			return
		}
		RespondData(c, http.StatusOK, gin.H{"id": c.Param("id"), "by": session.UserID})
	}

	rec, resp, err := SimulateAPICall(handler, "/jobs/JOB001", http.MethodGet, nil, WithParams(gin.Param{Key: "id", Value: "JOB001"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", resp["error"])

	rec, resp, err = SimulateAPICall(handler, "/jobs/JOB001", http.MethodGet, nil,
		WithParams(gin.Param{Key: "id", Value: "JOB001"}),
		WithSession(model.Session{UserID: "admin", Role: model.RoleAdmin}),
	)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "JOB001", data["id"])
	assert.Equal(t, "admin", data["by"])
}

func TestExtractSession(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := ExtractSession(c)
	assert.Error(t, err)

	c.Set(SessionKey, model.Session{UserID: "admin"})
	s, err := ExtractSession(c)
	require.NoError(t, err)
	assert.Equal(t, "admin", s.UserID)
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger(&buf, "WARN")
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"key":"value"`)

	buf.Reset()
	NewLogger(&buf, "nonsense").Info("default info")
	assert.Contains(t, buf.String(), "default info")
}
