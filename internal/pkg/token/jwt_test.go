package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocaixa/internal/pkg/token"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "operador-12",
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("chave-do-backend"))
	require.NoError(t, err)
	return s
}

func TestInspect_ReadsExpiryWithoutKey(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signed(t, exp)

	claims, err := token.NewInspector().Inspect("Bearer " + raw)

	require.NoError(t, err)
	assert.Equal(t, "operador-12", claims.Subject)
	assert.True(t, claims.ExpiresAt.Equal(exp))
	assert.False(t, claims.Expired(time.Now(), 30*time.Second))
}

func TestInspect_ExpiredToken(t *testing.T) {
	raw := signed(t, time.Now().Add(-time.Minute))

	claims, err := token.NewInspector().Inspect(raw)

	require.NoError(t, err)
	assert.True(t, claims.Expired(time.Now(), 0))
}

func TestInspect_OpaqueToken(t *testing.T) {
	_, err := token.NewInspector().Inspect("12|x8Yh2kLq")

	assert.ErrorIs(t, err, token.ErrOpaqueToken)
}

func TestInspect_Malformed(t *testing.T) {
	_, err := token.NewInspector().Inspect("aaa.bbb.ccc")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, token.ErrOpaqueToken)
}

func TestClaims_NoExpiryNeverExpires(t *testing.T) {
	assert.False(t, token.Claims{}.Expired(time.Now(), time.Hour))
}
