package pod

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the referenced pod ID is absent from the registry.
var ErrNotFound = errors.New("pod not found")

// ProvisionError indicates the provider rejected or failed a pod creation
// request.
type ProvisionError struct {
	Cause      error
	NoCapacity bool
}

// Error implements the error interface.
func (e *ProvisionError) Error() string {
	return fmt.Sprintf("pod creation failed: %s", e.Cause)
}

// Unwrap exposes the underlying provider error.
func (e *ProvisionError) Unwrap() error {
	return e.Cause
}

// OperationError indicates the provider failed an operator action on an
// existing pod (resume, terminate). The pod's local state is untouched.
type OperationError struct {
	Op    string
	PodID string
	Cause error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed for pod %s: %s", e.Op, e.PodID, e.Cause)
}

// Unwrap exposes the underlying provider error.
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// IsNotFound checks if an error indicates an unknown pod ID.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNoCapacity checks if an error indicates the requested GPU type had no
// available instances.
func IsNoCapacity(err error) bool {
	var pe *ProvisionError
	return errors.As(err, &pe) && pe.NoCapacity
}
