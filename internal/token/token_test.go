package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	manager := NewManager("secret", time.Hour, "spk")

	signed, expiresAt, err := manager.Issue(42, "student")
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	identity, err := manager.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, uint(42), identity.UserID)
	require.Equal(t, "student", identity.Role)
}

func TestParseRejectsExpiredAndForeignTokens(t *testing.T) {
	manager := NewManager("secret", time.Minute, "spk")
	manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := manager.Issue(1, "teacher")
	require.NoError(t, err)

	manager.now = time.Now
	_, err = manager.Parse(expired)
	require.ErrorIs(t, err, ErrInvalidToken)

	other := NewManager("another-secret", time.Hour, "spk")
	foreign, _, err := other.Issue(1, "teacher")
	require.NoError(t, err)
	_, err = manager.Parse(foreign)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsMissingSubject(t *testing.T) {
	manager := NewManager("secret", time.Hour, "spk")
	claims := Claims{Role: "teacher", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = manager.Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}
