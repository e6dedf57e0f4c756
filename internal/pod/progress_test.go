package pod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateProgress(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  float64
	}{
		{
			name:  "no logs means container not started",
			lines: nil,
			want:  5,
		},
		{
			name:  "logs without keywords",
			lines: []string{"booting", "mounting volume"},
			want:  10,
		},
		{
			name:  "install keyword",
			lines: []string{"Installing python packages"},
			want:  20,
		},
		{
			name:  "clone keyword",
			lines: []string{"install deps", "Cloning into workspace"},
			want:  30,
		},
		{
			name:  "download keyword",
			lines: []string{"Downloading checkpoint"},
			want:  40,
		},
		{
			name:  "model keyword wins over download",
			lines: []string{"download", "loading model weights"},
			want:  60,
		},
		{
			name:  "comfyui mention alone stays at clone stage",
			lines: []string{"install deps", "Cloning into ComfyUI"},
			want:  30,
		},
		{
			name:  "comfyui and running together",
			lines: []string{"ComfyUI server is running on port 8188"},
			want:  90,
		},
		{
			name:  "comfyui and running on separate lines",
			lines: []string{"Starting ComfyUI server", "running at 0.0.0.0:8188"},
			want:  90,
		},
		{
			name:  "max over all lines regardless of order",
			lines: []string{"ComfyUI running", "installing", "clone"},
			want:  90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateProgress(tt.lines))
		})
	}
}

func TestStepForProgress(t *testing.T) {
	assert.Equal(t, "Waiting for container", StepForProgress(5))
	assert.Equal(t, "Installing dependencies", StepForProgress(20))
	assert.Equal(t, "Downloading models", StepForProgress(40))
	assert.Equal(t, "Starting ComfyUI", StepForProgress(95))
	assert.Equal(t, "Ready", StepForProgress(100))
}
