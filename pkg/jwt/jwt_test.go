package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken(Identity{UserID: 3, Email: "lib@example.com", Name: "Lin", Role: "librarian"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
	assert.Equal(t, "librarian", claims.Role)

	refresh, err := m.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, refresh.Role)
}

func TestParseToken_Expired(t *testing.T) {
	m := NewManager("test-secret", time.Minute, time.Hour)
	issued := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	pair, err := m.GenerateToken(Identity{UserID: 1, Role: "student"})
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	pair, err := NewManager("a", time.Hour, time.Hour).GenerateToken(Identity{UserID: 1})
	require.NoError(t, err)

	_, err = NewManager("b", time.Hour, time.Hour).ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
