package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// TokenType is the label returned next to every issued access token.
const TokenType = "bearer"

var ErrInvalidToken = errors.New("invalid token")

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// unknownUserHash is compared against when no stored hash exists, so a
// login for an unknown email costs the same as a wrong password.
var unknownUserHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("no-such-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

// Claims is the token payload; the subject is the user's email.
type Claims struct {
	jwt.RegisteredClaims
}

// CredentialService hashes passwords and mints bearer tokens. It holds no
// state beyond the signing key, token lifetime and clock.
type CredentialService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
	compare   func(hash, password []byte) error
}

func NewCredentialService(secretKey string, ttl time.Duration) *CredentialService {
	return &CredentialService{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
		compare:   bcrypt.CompareHashAndPassword,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *CredentialService) WithClock(now func() time.Time) *CredentialService {
	s.now = now
	return s
}

// WithComparer replaces the bcrypt comparison, for tests.
func (s *CredentialService) WithComparer(compare func(hash, password []byte) error) *CredentialService {
	s.compare = compare
	return s
}

// TTL is the configured token lifetime.
func (s *CredentialService) TTL() time.Duration { return s.ttl }

func (s *CredentialService) HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches hash. A malformed hash is
// a mismatch, not an error.
func (s *CredentialService) VerifyPassword(plaintext, hash string) bool {
	return s.compare([]byte(hash), []byte(plaintext)) == nil
}

// RejectPassword runs a full comparison against a throwaway hash and always
// reports false. Use it when there is no stored hash to check.
func (s *CredentialService) RejectPassword(plaintext string) bool {
	_ = s.compare(unknownUserHash(), []byte(plaintext))
	return false
}

// IssueToken signs an HS256 token for subject expiring at now+TTL.
func (s *CredentialService) IssueToken(subject string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken validates signature, algorithm and expiry and returns the subject.
func (s *CredentialService) ParseToken(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
