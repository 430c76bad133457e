package logkey

// Common keys for structured log attributes so log lines stay greppable.
const (
	TraceID = "trace_id"
	Error   = "error"
	UserID  = "user_id"
	OrderID = "order_id"
)
