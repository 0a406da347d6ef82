// Package controller holds helpers shared by the resource handlers in its subpackages.
package controller

import (
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sachin-security/sachin-security-sub000/internal/database"
)

// FilterSpec maps list query parameters onto document fields.
type FilterSpec struct {
	// Exact maps a query parameter to a field compared for equality.
	Exact map[string]string
	// Contains maps a query parameter to a field matched as a case-insensitive substring.
	Contains map[string]string
	// Search lists the fields ?search= is matched against; any of them may match.
	Search []string
}

// Filters builds the store filters for the query parameters of c. Blank parameters are ignored.
func Filters(c *gin.Context, spec FilterSpec) []database.Filter {
	var filters []database.Filter
	for _, param := range sortedKeys(spec.Exact) {
		if v := strings.TrimSpace(c.Query(param)); v != "" {
			filters = append(filters, database.Eq(spec.Exact[param], v))
		}
	}
	for _, param := range sortedKeys(spec.Contains) {
		if v := strings.TrimSpace(c.Query(param)); v != "" {
			filters = append(filters, database.Contains(spec.Contains[param], v))
		}
	}
	if v := strings.TrimSpace(c.Query("search")); v != "" && len(spec.Search) > 0 {
		filters = append(filters, database.Search(v, spec.Search...))
	}
	return filters
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Now is the clock used for createdAt/updatedAt stamps.
var Now = func() time.Time {
	return time.Now().UTC()
}
