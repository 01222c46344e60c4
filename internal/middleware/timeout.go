package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout attaches a deadline of d to the request context and runs the rest
// of the chain synchronously, so gin.Context is never touched from another
// goroutine.
//
// If the deadline has passed when the chain returns and nothing has been
// written, the request is answered with a 503. A handler blocked in code that
// ignores its context cannot be interrupted; every store call takes the
// request context and unblocks when the deadline fires.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() != nil && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "request timed out",
			})
		}
	}
}
