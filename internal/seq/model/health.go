package model

type HealthState string

const (
	Healthy   HealthState = "healthy"
	Unhealthy HealthState = "unhealthy"
)

// HealthStatus is the outcome of probing /api/health.
type HealthStatus struct {
	Status  HealthState `json:"status"`
	Message string      `json:"message,omitempty"`
}
