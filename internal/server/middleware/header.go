package middleware

import (
	"errors"
	"net/http"
	"strings"
)

// TokenConfig describes where a bearer token is looked up.
type TokenConfig struct {
	// Headers are checked in order.
	Headers []string
	// RequireBearer requires the "Bearer " prefix on the Authorization header.
	RequireBearer bool
	// AllowedPrefixes are stripped from other headers when present.
	AllowedPrefixes []string
}

var DefaultTokenConfig = &TokenConfig{
	Headers:         []string{"Authorization", "X-Auth-Token"},
	RequireBearer:   true,
	AllowedPrefixes: []string{"Bearer ", "Token "},
}

var (
	ErrTokenNotFound = errors.New("Authorization header is required")
	ErrBearerPrefix  = errors.New("Authorization header must start with 'Bearer '")
	ErrEmptyToken    = errors.New("token is required")
)

// ExtractToken returns the first token found in the configured headers.
func ExtractToken(r *http.Request, config *TokenConfig) (string, error) {
	if config == nil {
		config = DefaultTokenConfig
	}

	var lastError error

	for _, headerName := range config.Headers {
		headerValue := r.Header.Get(headerName)
		if headerValue == "" {
			continue
		}

		if strings.EqualFold(headerName, "authorization") && config.RequireBearer {
			if !strings.HasPrefix(headerValue, "Bearer ") {
				lastError = ErrBearerPrefix
				continue
			}

			token := strings.TrimSpace(strings.TrimPrefix(headerValue, "Bearer "))
			if token == "" {
				lastError = ErrEmptyToken
				continue
			}

			return token, nil
		}

		token := headerValue
		for _, prefix := range config.AllowedPrefixes {
			if strings.HasPrefix(headerValue, prefix) {
				token = strings.TrimPrefix(headerValue, prefix)
				break
			}
		}

		if strings.TrimSpace(token) == "" {
			lastError = ErrEmptyToken
			continue
		}

		return strings.TrimSpace(token), nil
	}

	if lastError != nil {
		return "", lastError
	}

	return "", ErrTokenNotFound
}
