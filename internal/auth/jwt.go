package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the only error Verify returns; forged, malformed and
// expired tokens are indistinguishable to callers.
var ErrInvalidToken = errors.New("invalid token")

const tokenTypeAccess = "access"

// Identity is the payload carried by a token.
type Identity struct {
	Email string
}

type Claims struct {
	Email     string `json:"email"`
	TokenType string `json:"typ"`
	JTI       string `json:"jti"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager builds a token manager. ttl <= 0 issues tokens without an expiry.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

func (m *Manager) Issue(id Identity) (string, error) {
	if id.Email == "" {
		return "", errors.New("identity email is required")
	}

	now := m.now().UTC()

	claims := Claims{
		Email:     id.Email,
		TokenType: tokenTypeAccess,
		JTI:       uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Subject:  id.Email,
		},
	}

	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) Verify(tokenStr string) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// Enforce HMAC
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuedAt())

	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	if claims.TokenType != tokenTypeAccess || claims.Email == "" {
		return Identity{}, ErrInvalidToken
	}

	if m.ttl > 0 && claims.ExpiresAt == nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{Email: claims.Email}, nil
}
