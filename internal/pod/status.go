package pod

import "strings"

// Status is the lifecycle state of a pod.
type Status string

const (
	// StatusInitializing marks a pod whose setup has not finished.
	StatusInitializing Status = "initializing"
	// StatusRunning marks a pod whose server answered a liveness probe.
	StatusRunning Status = "running"
	// StatusFailed marks a pod that failed to become ready.
	StatusFailed Status = "failed"
	// StatusStopped marks a pod stopped at the provider but not deleted.
	StatusStopped Status = "stopped"
	// StatusTerminated marks a pod that was deleted at the provider. It
	// stays in the registry for cost history.
	StatusTerminated Status = "terminated"
)

// Active reports whether the pod is accruing cost and worth monitoring.
func (s Status) Active() bool {
	return s == StatusRunning || s == StatusInitializing
}

// FromProviderStatus maps the provider's declared status onto ours.
// Anything unrecognized maps to stopped.
func FromProviderStatus(s string) Status {
	switch strings.ToUpper(s) {
	case "RUNNING":
		return StatusRunning
	case "EXITED":
		return StatusStopped
	case "FAILED":
		return StatusFailed
	case "PENDING":
		return StatusInitializing
	default:
		return StatusStopped
	}
}
