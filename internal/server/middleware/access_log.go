package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nriit/facultypubs/internal/authz"
	"github.com/nriit/facultypubs/internal/contexts"
	"github.com/nriit/facultypubs/internal/log"
)

// AccessLog logs every request at debug level, and failed requests (status >= 400 or
// recorded errors) at warn or error level with the collected errors.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		ctx := c.Request.Context()

		var errMsgs []string
		for _, e := range c.Errors {
			errMsgs = append(errMsgs, e.Error())
		}

		for _, e := range contexts.GetErrors(ctx) {
			errMsgs = append(errMsgs, e.Error())
		}

		status := c.Writer.Status()

		fields := []log.Field{
			log.Int("status", status),
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.Duration("latency", time.Since(start)),
			log.String("client_ip", c.ClientIP()),
		}

		if p, ok := authz.GetPrincipal(ctx); ok && p.IsUser() {
			fields = append(fields, log.String("principal", p.Email))
		}

		if len(errMsgs) > 0 {
			fields = append(fields, log.Strings("errors", errMsgs))
		}

		switch {
		case status >= 500:
			log.Error(ctx, "[ACCESS]", fields...)
		case status >= 400 || len(errMsgs) > 0:
			log.Warn(ctx, "[ACCESS]", fields...)
		default:
			log.Debug(ctx, "[ACCESS]", fields...)
		}
	}
}
