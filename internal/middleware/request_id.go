package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/taskquest-api/internal/constants"
)

// RequestID propagates the X-Request-ID header, generating one when absent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(constants.ContextKeyRequestID, id)
		c.Header(constants.HeaderRequestID, id)
		c.Next()
	}
}

// LogFormatter is gin's default access log line with the request ID prepended.
func LogFormatter(param gin.LogFormatterParams) string {
	requestID, _ := param.Keys[constants.ContextKeyRequestID].(string)
	if requestID == "" {
		requestID = "-"
	}

	return fmt.Sprintf("[GIN] %v | %s | %3d | %13v | %15s | %-7s %#v\n%s",
		param.TimeStamp.Format(time.RFC3339),
		requestID,
		param.StatusCode,
		param.Latency,
		param.ClientIP,
		param.Method,
		param.Path,
		param.ErrorMessage,
	)
}
