package biz

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"

	"github.com/nriit/facultypubs/internal/log"
)

const (
	defaultEmailClaim = "userEmail"
	fallbackClaim     = "email"
	defaultTokenTTL   = 7 * 24 * time.Hour
)

var ErrMissingSecret = errors.New("jwt secret is not configured")

type AuthServiceParams struct {
	fx.In

	Config AuthConfig
}

func NewAuthService(params AuthServiceParams) *AuthService {
	cfg := params.Config
	if cfg.EmailClaim == "" {
		cfg.EmailClaim = defaultEmailClaim
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	return &AuthService{config: cfg, now: time.Now}
}

// AuthService verifies the bearer tokens that identify the calling principal.
type AuthService struct {
	config AuthConfig
	now    func() time.Time
}

// GenerateSecretKey generates a random secret key for JWT.
func GenerateSecretKey() (string, error) {
	bytes := make([]byte, 32) // 256 bits

	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}

// IssueToken signs a token for the email that AuthenticateToken accepts.
func (s *AuthService) IssueToken(email string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", ErrMissingSecret
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return "", invalid("email", "Email is required")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		s.config.EmailClaim: email,
		"iat":               s.now().Unix(),
		"exp":               s.now().Add(s.config.TokenTTL).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// AuthenticateToken validates a JWT token and returns the principal email.
func (s *AuthService) AuthenticateToken(ctx context.Context, tokenString string) (string, error) {
	if s.config.JWTSecret == "" {
		log.Error(ctx, "rejecting token, jwt secret is not configured")
		return "", fmt.Errorf("%w: %w", ErrInvalidJWT, ErrMissingSecret)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method: %v", ErrInvalidJWT, token.Header["alg"])
		}

		return []byte(s.config.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse jwt token: %w", ErrInvalidJWT, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: invalid token", ErrInvalidJWT)
	}

	for _, name := range []string{s.config.EmailClaim, fallbackClaim} {
		if email, ok := claims[name].(string); ok && strings.TrimSpace(email) != "" {
			return strings.TrimSpace(email), nil
		}
	}

	return "", fmt.Errorf("%w: invalid token claims", ErrInvalidJWT)
}
