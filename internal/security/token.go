package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrBadCredentials = errors.New("invalid administrator password")
)

// AdminClaims is the claim set carried by administrator session tokens.
type AdminClaims struct {
	jwt.RegisteredClaims
}

// TokenManager gates the administrator surface: it exchanges the shared
// administrator password for a short-lived session token and validates
// tokens on every admin call. The configured password is stored as a
// bcrypt hash, never in the clear.
type TokenManager interface {
	Authenticate(password string) (string, error)
	ValidateToken(tokenString string) (*AdminClaims, error)
}

type tokenManager struct {
	secret       []byte
	passwordHash []byte
	ttl          time.Duration
}

func NewTokenManager(secret, passwordHash string, ttl time.Duration) TokenManager {
	return &tokenManager{
		secret:       []byte(secret),
		passwordHash: []byte(passwordHash),
		ttl:          ttl,
	}
}

func (m *tokenManager) Authenticate(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)); err != nil {
		return "", ErrBadCredentials
	}

	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "meteopad",
			Audience:  jwt.ClaimStrings{"admin-api"},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*AdminClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// HashPassword derives the bcrypt hash stored in configuration.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
