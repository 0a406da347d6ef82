package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/sachin-security/sachin-security-sub000/internal/database"
)

func TestFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	spec := FilterSpec{
		Exact:    map[string]string{"status": "status", "dept": "department"},
		Contains: map[string]string{"location": "location"},
		Search:   []string{"title", "description"},
	}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/jobs?status=Active&dept=&location=%20Vadodara%20&search=guard&ignored=x", nil)

	got := Filters(c, spec)
	assert.Equal(t, []database.Filter{
		database.Eq("status", "Active"),
		database.Contains("location", "Vadodara"),
		database.Search("guard", "title", "description"),
	}, got)
}

func TestFilters_NoSearchFields(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/x?search=guard", nil)

	assert.Empty(t, Filters(c, FilterSpec{}))
}
