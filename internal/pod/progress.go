package pod

import "strings"

// milestone maps a setup log keyword to the progress it implies. The
// estimate is the max over all matched milestones, so out-of-order or
// repeated log lines can never move progress backwards.
type milestone struct {
	keyword string
	percent float64
}

var setupMilestones = []milestone{
	{"install", 20},
	{"clone", 30},
	{"download", 40},
	{"model", 60},
}

// EstimateProgress derives a setup progress percentage from provider log
// lines. With no logs at all the container likely has not started: 5%.
// With logs but no recognized keyword the base is 10%. Milestones match
// case-insensitively against the full cumulative log text, so a phrase
// split across lines still counts. The server-started milestone needs
// both "comfyui" and "running" to appear: "comfyui" alone shows up far
// earlier, in clone and install output. The result never exceeds
// maxPendingProgress.
func EstimateProgress(lines []string) float64 {
	if len(lines) == 0 {
		return 5
	}
	text := strings.ToLower(strings.Join(lines, "\n"))
	best := 10.0
	for _, m := range setupMilestones {
		if m.percent > best && strings.Contains(text, m.keyword) {
			best = m.percent
		}
	}
	if strings.Contains(text, "comfyui") && strings.Contains(text, "running") {
		best = 90
	}
	if best > maxPendingProgress {
		best = maxPendingProgress
	}
	return best
}

// StepForProgress names the setup phase a progress value corresponds to,
// for event stream consumers.
func StepForProgress(percent float64) string {
	switch {
	case percent < 10:
		return "Waiting for container"
	case percent < 20:
		return "Starting container"
	case percent < 30:
		return "Installing dependencies"
	case percent < 40:
		return "Cloning repositories"
	case percent < 60:
		return "Downloading models"
	case percent < 90:
		return "Loading models"
	case percent < 100:
		return "Starting ComfyUI"
	default:
		return "Ready"
	}
}
