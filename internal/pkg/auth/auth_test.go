package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("0123456789abcdef", time.Hour)

	raw, expires, err := issuer.Issue("user-1", KindAdmin, "manager")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, KindAdmin, claims.Kind)
	assert.Equal(t, "manager", claims.Role)
}

func TestParse_Expired(t *testing.T) {
	issuer := NewTokenIssuer("0123456789abcdef", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	raw, _, err := issuer.Issue("c-1", KindCustomer, "")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(raw)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParse_WrongSecret(t *testing.T) {
	raw, _, err := NewTokenIssuer("0123456789abcdef", time.Hour).Issue("c-1", KindCustomer, "")
	require.NoError(t, err)

	_, err = NewTokenIssuer("fedcba9876543210", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret-pass"))
}
