package services

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestHashAndVerifyPassword(t *testing.T) {
	s := NewCredentialService("k", time.Minute)

	hash, err := s.HashPassword("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", hash)

	other, err := s.HashPassword("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes must be salted")

	assert.True(t, s.VerifyPassword("pw123", hash))
	assert.False(t, s.VerifyPassword("pw124", hash))
	assert.False(t, s.VerifyPassword("pw123", "not-a-bcrypt-hash"))
	assert.False(t, s.VerifyPassword("", hash))
}

func TestHashPassword_TooLong(t *testing.T) {
	s := NewCredentialService("k", time.Minute)

	_, err := s.HashPassword(strings.Repeat("p", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = s.HashPassword(strings.Repeat("p", MaxPasswordBytes))
	assert.NoError(t, err)
}

func TestRejectPassword_RunsFullComparison(t *testing.T) {
	var hashes [][]byte
	s := NewCredentialService("k", time.Minute).WithComparer(func(hash, password []byte) error {
		hashes = append(hashes, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	})

	assert.False(t, s.RejectPassword("no-such-user"))
	assert.False(t, s.RejectPassword("anything"))
	require.Len(t, hashes, 2)

	cost, err := bcrypt.Cost(hashes[0])
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestIssueToken_EmbedsSubjectAndExpiry(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	s := NewCredentialService("super-secret", 30*time.Minute).WithClock(fixedClock(now))

	tok, expiresAt, err := s.IssueToken("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), expiresAt)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, now.Add(30*time.Minute).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())

	sub, err := s.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sub)
}

func TestParseToken_Expired(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	issuer := NewCredentialService("k", time.Minute).WithClock(fixedClock(now))
	tok, _, err := issuer.IssueToken("a@example.com")
	require.NoError(t, err)

	later := NewCredentialService("k", time.Minute).WithClock(fixedClock(now.Add(2 * time.Minute)))
	_, err = later.ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_WrongSecretAndGarbage(t *testing.T) {
	tok, _, err := NewCredentialService("right", time.Hour).IssueToken("a@example.com")
	require.NoError(t, err)

	_, err = NewCredentialService("wrong", time.Hour).ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewCredentialService("right", time.Hour).ParseToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// alg=none must be refused
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewCredentialService("right", time.Hour).ParseToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.True(t, strings.HasSuffix(unsigned, "."))
}
