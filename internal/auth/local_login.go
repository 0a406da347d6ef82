// Package auth implements admin login, access tokens and token revocation.
package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sachin-security/sachin-security-sub000/internal/utilities"
)

// LoginHandler serves POST /api/login for both login and logout.
type LoginHandler struct {
	Credentials  *CredentialStore
	Tokens       TokenService
	Revoker      Revoker
	CookieSecure bool
}

// NewLoginHandler wires the handler. A nil revoker makes logout cookie-only.
func NewLoginHandler(creds *CredentialStore, tokens TokenService, revoker Revoker, cookieSecure bool) *LoginHandler {
	if revoker == nil {
		revoker = NoopRevoker{}
	}
	return &LoginHandler{
		Credentials:  creds,
		Tokens:       tokens,
		Revoker:      revoker,
		CookieSecure: cookieSecure,
	}
}

type loginInfo struct {
	UserID   string `json:"userID"`
	Password string `json:"password"`
	LogOut   bool   `json:"logOut"`
}

type loginResponse struct {
	UserID          string `json:"userID"`
	DisplayName     string `json:"displayName"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// LoginHandler authenticates an admin, or logs out when the body is {"logOut": true}.
// @Summary Admin login and logout
// @Description Sets the authToken cookie on success. Send {"logOut": true} to clear it.
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body loginInfo true "userID and password, or logOut"
// @Success 200 {object} loginResponse "Logged in"
// @Failure 400 {object} utilities.ErrorResponse "Missing userID or password"
// @Failure 401 {object} utilities.ErrorResponse "Invalid credentials"
// @Failure 500 {object} utilities.ErrorResponse "Token signing failed"
// @Router /login [post]
func (h *LoginHandler) LoginHandler(c *gin.Context) {
	var info loginInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if info.LogOut {
		h.logout(c)
		return
	}

	logger := utilities.Logger(c)
	if info.UserID == "" || info.Password == "" {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "User ID and password are required"})
		return
	}

	identity, ok := h.Credentials.Authenticate(info.UserID, info.Password)
	if !ok {
		LogAuthAttempt(logger, slog.LevelWarn, "Local", "Fail", info.UserID, "invalid credentials")
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: "Invalid credentials"})
		return
	}

	token, claims, err := h.Tokens.Issue(identity)
	if err != nil {
		LogAuthAttempt(logger, slog.LevelError, "Local", "Fail", info.UserID, err.Error())
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Internal server error"})
		return
	}

	// The cookie lives exactly as long as the token it carries.
	h.setCookie(c, token, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	LogAuthAttempt(logger, slog.LevelInfo, "Local", "Success", identity.UserID, "")

	c.JSON(http.StatusOK, loginResponse{
		UserID:          identity.UserID,
		DisplayName:     identity.DisplayName,
		IsAuthenticated: true,
	})
}

// logout clears the cookie unconditionally. When a revocation list is configured the
// presented token is revoked too; otherwise it stays valid until it expires.
func (h *LoginHandler) logout(c *gin.Context) {
	logger := utilities.Logger(c)
	if token, err := c.Cookie(CookieName); err == nil && token != "" {
		if claims, err := h.Tokens.Verify(c.Request.Context(), token); err == nil {
			if err := h.Revoker.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
				logger.Error("failed to revoke token", slog.String("error", err.Error()))
			}
			LogAuthAttempt(logger, slog.LevelInfo, "Logout", "Success", claims.UserID, "")
		}
	}

	h.setCookie(c, "", -1)
	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Logged out successfully"})
}

func (h *LoginHandler) setCookie(c *gin.Context, value string, maxAge time.Duration) {
	age := int(maxAge.Seconds())
	if maxAge < 0 {
		age = -1
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   age,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionHandler returns the identity of the current token.
// @Summary Current admin session
// @Tags Auth
// @Produce json
// @Success 200 {object} utilities.Envelope "Session"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Router /session [get]
func SessionHandler(c *gin.Context) {
	session, err := utilities.ExtractSession(c)
	if err != nil {
		utilities.RespondError(c, utilities.AuthFailure("Unauthorized"))
		return
	}
	utilities.RespondData(c, http.StatusOK, session)
}
