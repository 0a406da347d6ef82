package model

// Roles an admin identity can carry.
const (
	RoleAdmin = "admin"
	RoleHR    = "hr"
)

// Identity is one statically configured back-office account.
// Password holds either the plain secret or a bcrypt hash ("$2..." prefix).
type Identity struct {
	UserID      string `json:"userID"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Password    string `json:"password"`
}

// Session is the identity asserted by a verified access token.
type Session struct {
	UserID      string `json:"userID"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// Session drops the password.
func (i Identity) Session() Session {
	return Session{UserID: i.UserID, DisplayName: i.DisplayName, Role: i.Role}
}
