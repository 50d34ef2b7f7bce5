package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nriit/facultypubs/internal/authz"
	"github.com/nriit/facultypubs/internal/server/biz"
)

// TokenAuthenticator resolves a bearer token to the principal email.
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, token string) (string, error)
}

// WithJWTAuth rejects requests without a valid token and stores the principal in the
// request context.
func WithJWTAuth(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractToken(c.Request, nil)
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, err)
			return
		}

		email, err := auth.AuthenticateToken(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)

			if errors.Is(err, biz.ErrInvalidJWT) {
				AbortWithError(c, http.StatusUnauthorized, errors.New("Invalid token"))
			} else {
				AbortWithError(c, http.StatusInternalServerError, errors.New("Failed to validate token"))
			}

			return
		}

		ctx := authz.NewUserContext(c.Request.Context(), email)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
