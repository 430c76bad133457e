package ctxmanage

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceIDKey is the gin context key under which the request trace id is stored.
const TraceIDKey = "trace_id"

// GetTraceIdOfRequest returns the trace id set by the logging middleware.
// A fresh id is generated if the middleware did not run for this request.
func GetTraceIdOfRequest(c *gin.Context) string {
	if traceId, ok := c.Get(TraceIDKey); ok {
		if s, ok := traceId.(string); ok && s != "" {
			return s
		}
	}
	return uuid.NewString()
}
