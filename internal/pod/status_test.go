package pod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromProviderStatus(t *testing.T) {
	tests := []struct {
		provider string
		want     Status
	}{
		{"RUNNING", StatusRunning},
		{"running", StatusRunning},
		{"EXITED", StatusStopped},
		{"FAILED", StatusFailed},
		{"PENDING", StatusInitializing},
		{"CREATED", StatusStopped},
		{"", StatusStopped},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromProviderStatus(tt.provider), tt.provider)
	}
}

func TestStatusActive(t *testing.T) {
	assert.True(t, StatusRunning.Active())
	assert.True(t, StatusInitializing.Active())
	assert.False(t, StatusStopped.Active())
	assert.False(t, StatusFailed.Active())
	assert.False(t, StatusTerminated.Active())
}
