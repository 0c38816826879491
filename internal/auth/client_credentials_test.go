package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedTokenWithExp(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

func TestTokenTTLFromExpClaim(t *testing.T) {
	tr := tokenResponse{
		AccessToken: signedTokenWithExp(t, time.Now().Add(time.Hour)),
		ExpiresIn:   60,
	}

	ttl := tokenTTL(tr)
	assert.Greater(t, ttl, 55*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestTokenTTLFallsBackToExpiresIn(t *testing.T) {
	// Opaque token: not a JWT at all.
	ttl := tokenTTL(tokenResponse{AccessToken: "opaque-token", ExpiresIn: 3599})
	assert.Equal(t, 3599*time.Second, ttl)

	// Parseable JWT whose exp already passed.
	expired := tokenResponse{
		AccessToken: signedTokenWithExp(t, time.Now().Add(-time.Minute)),
		ExpiresIn:   120,
	}
	assert.Equal(t, 120*time.Second, tokenTTL(expired))
}
