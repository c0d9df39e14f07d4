package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenClaims  = errors.New("invalid token claims")
)

// Identity is what a verified token says about its bearer.
type Identity struct {
	UserID  int64
	Email   string
	IsAdmin bool
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) GenerateToken(id Identity) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId":  id.UserID,
		"email":   id.Email,
		"isAdmin": id.IsAdmin,
		"exp":     m.now().Add(m.ttl).Unix(),
	})
	return token.SignedString(m.secret)
}

// VerifyToken checks the signature and expiry and returns the identity in the payload.
func (m *TokenManager) VerifyToken(token string) (Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return Identity{}, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrTokenClaims
	}
	uid, ok := claims["userId"].(float64)
	if !ok {
		return Identity{}, ErrTokenClaims
	}
	email, _ := claims["email"].(string)
	admin, _ := claims["isAdmin"].(bool)

	return Identity{UserID: int64(uid), Email: email, IsAdmin: admin}, nil
}
