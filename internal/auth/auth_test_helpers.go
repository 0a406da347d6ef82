package auth

import (
	"net/http"
	"testing"

	"github.com/sachin-security/sachin-security-sub000/internal/model"
)

// TestSecret signs tokens in tests.
const TestSecret = "test-secret-0123456789abcdef"

// TestIdentity is a configured admin used across handler tests.
var TestIdentity = model.Identity{
	UserID:      "admin",
	DisplayName: "Site Admin",
	Role:        model.RoleAdmin,
	Password:    "Adm1n!pass",
}

// GetAccessToken issues a token for identity and returns it as an authToken cookie.
func GetAccessToken(t *testing.T, tokens TokenService, identity model.Identity) *http.Cookie {
	t.Helper()
	token, _, err := tokens.Issue(identity)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return &http.Cookie{Name: CookieName, Value: token, Path: "/"}
}
