package constants

// HTTP paths served by the agent.
const (
	PathHealth = "/health"
	PathReady  = "/ready"
	PathState  = "/state"
	PathWS     = "/ws/state"
)
