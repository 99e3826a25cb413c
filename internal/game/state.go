package game

// SessionStatus is the lifecycle state of a managed session
type SessionStatus string

const (
	StatusActive SessionStatus = "ACTIVE"
	StatusClosed SessionStatus = "CLOSED"
)

// Reasons a managed session ends
const (
	EndReasonClosed   = "closed"
	EndReasonIdle     = "idle"
	EndReasonShutdown = "shutdown"
	EndReasonExpired  = "expired"
)
