package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/shared/server/respond"
	"resume-analyzer/internal/shared/telemetry"
)

// Recovery converts panics into a 500 internal error. When the client has already gone
// away the request is only aborted, since nothing can be written back.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      fmt.Sprint(rec),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			}
			if err, ok := rec.(error); ok && clientGone(err) {
				telemetry.Warn("request.client_gone", fields)
				c.Abort()
				return
			}
			fields["stack"] = string(debug.Stack())
			telemetry.Error("panic", fields)
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "Internal server error", nil)
		}()
		c.Next()
	}
}

func clientGone(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, http.ErrAbortHandler)
}
