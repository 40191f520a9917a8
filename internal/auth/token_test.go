package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimflow/internal/auth"
	"claimflow/internal/config"
	"claimflow/internal/domain"
)

func newIssuer(t *testing.T, secret string) *auth.Issuer {
	t.Helper()
	iss, err := auth.NewIssuer(&config.AuthConfig{Secret: secret, Issuer: "claimflow", TokenTTL: time.Hour})
	require.NoError(t, err)
	return iss
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	_, err := auth.NewIssuer(&config.AuthConfig{})
	assert.Error(t, err)
}

func TestIssueAndValidate(t *testing.T) {
	iss := newIssuer(t, "test-secret")

	token, expiresAt, err := iss.Issue("intake-portal", 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := iss.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "intake-portal", claims.Subject)
	assert.Equal(t, "claimflow", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestIssue_EmptySubject(t *testing.T) {
	_, _, err := newIssuer(t, "s").Issue("", time.Minute)
	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	iss := newIssuer(t, "test-secret")
	other := newIssuer(t, "other-secret")
	foreign, _, err := other.Issue("someone", time.Hour)
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "someone",
		Issuer:    "claimflow",
		Audience:  jwt.ClaimStrings{"claims-api"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	wrongAudience, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "someone",
		Issuer:    "claimflow",
		Audience:  jwt.ClaimStrings{"refresh"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   foreign,
		"expired":        expired,
		"wrong audience": wrongAudience,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := iss.Validate(token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
