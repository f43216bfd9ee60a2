package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/studyhub/backend/internal/config"
	"github.com/studyhub/backend/internal/model"
)

// AccessTokenTTL is fixed; tokens cannot be refreshed or revoked.
const AccessTokenTTL = time.Hour

// Expiry is encoded with millisecond precision so the validity window does not
// shrink to the issue second.
func init() {
	jwt.TimePrecision = time.Millisecond
}

var (
	ErrTokenMissing = errors.New("token missing")
	ErrTokenInvalid = errors.New("token invalid")
)

type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type sessionClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}

	return &TokenService{
		secret: []byte(cfg.JWTSecret),
		ttl:    AccessTokenTTL,
		now:    time.Now,
	}, nil
}

// Issue signs a session token for user, valid for AccessTokenTTL from now.
func (s *TokenService) Issue(user *model.User) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenStr and returns its claims.
// A token is rejected from the instant its expiry is reached.
func (s *TokenService) Verify(tokenStr string) (*model.AuthUser, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return nil, ErrTokenMissing
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return &model.AuthUser{
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}
