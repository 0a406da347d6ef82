package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/sachin-security/sachin-security-sub000/internal/model"
)

const (
	// JwtIssuer is the iss claim of every access token.
	JwtIssuer = "sachin-security"
	// CookieName carries the access token.
	CookieName = "authToken"
)

// ErrInvalidToken covers missing, malformed, tampered, expired and revoked tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of an access token.
type Claims struct {
	UserID      string `json:"userID"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// Session returns the identity asserted by the claims.
func (c *Claims) Session() model.Session {
	return model.Session{UserID: c.UserID, DisplayName: c.DisplayName, Role: c.Role}
}

// TokenService issues and verifies access tokens.
type TokenService interface {
	Issue(identity model.Identity) (string, *Claims, error)
	Verify(ctx context.Context, token string) (*Claims, error)
}

// JWTService signs HS256 tokens with a fixed lifetime.
type JWTService struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
}

// NewJWTService returns a TokenService. A nil revoker means tokens are never revoked.
func NewJWTService(secret string, ttl time.Duration, revoker Revoker) *JWTService {
	if revoker == nil {
		revoker = NoopRevoker{}
	}
	return &JWTService{secret: []byte(secret), ttl: ttl, revoker: revoker, now: time.Now}
}

// Issue signs a token for identity. The password never enters the claims.
func (s *JWTService) Issue(identity model.Identity) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		UserID:      identity.UserID,
		DisplayName: identity.DisplayName,
		Role:        identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    JwtIssuer,
			Subject:   identity.UserID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("Failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks signature, expiry, issuer and revocation.
func (s *JWTService) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token missing", ErrInvalidToken)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: token not valid", ErrInvalidToken)
	}
	if claims.Issuer != JwtIssuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: token has no expiry", ErrInvalidToken)
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", ErrInvalidToken)
	}
	return claims, nil
}
