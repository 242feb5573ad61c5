package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charging_console/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Domain errors for auth flows.
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrNoSecret           = errors.New("jwt secret not configured")
)

// Claims mirrors what the backend puts into its access token.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Username is the subject the token was issued for.
func (c Claims) Username() string { return c.Subject }

// AuthService forwards login to the backend and verifies the tokens it
// issues with the shared secret.
type AuthService struct {
	backend AuthBackend
	secret  []byte
}

func NewAuthService(backend AuthBackend, secret string) *AuthService {
	return &AuthService{backend: backend, secret: []byte(secret)}
}

// Login returns the backend-issued token for valid credentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrMissingCredentials
	}
	return s.backend.Login(ctx, username, password)
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.backend.Logout(ctx, token)
}

func (s *AuthService) Me(ctx context.Context, token string) (models.User, error) {
	return s.backend.Me(ctx, token)
}

// ParseToken verifies an HS256 token and returns its claims.
func (s *AuthService) ParseToken(accessToken string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrNoSecret
	}
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return *claims, nil
}
