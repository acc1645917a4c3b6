package testutil

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kendall-kelly/autoparts-api/config"
	"github.com/stretchr/testify/require"
)

// SignToken issues a token the way AuthService does, for the given customer
func SignToken(t *testing.T, cfg *config.Config, customerID uint, email, role string) string {
	t.Helper()
	return signToken(t, cfg.JWTSecret, jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(customerID), 10),
		"iss":   cfg.JWTIssuer,
		"aud":   []string{cfg.JWTAudience},
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
		"email": email,
		"role":  role,
	})
}

// AdminToken is SignToken for the configured admin address
func AdminToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	return SignToken(t, cfg, 1, cfg.AdminEmails[0], "admin")
}

// SignTokenWithClaims signs arbitrary claims, for malformed-token tests
func SignTokenWithClaims(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	return signToken(t, secret, claims)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}
