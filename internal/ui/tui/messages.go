// Package tui provides a Bubble Tea-based terminal dashboard for watching
// pods, their setup progress and accumulating cost.
package tui

import (
	"github.com/comfyrun/comfyrun/internal/cost"
	"github.com/comfyrun/comfyrun/internal/pod"
)

// PodsMsg carries the latest pod views from the daemon.
type PodsMsg struct {
	Pods    []pod.View
	Summary *cost.Summary
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }
