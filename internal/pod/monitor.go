package pod

import (
	"context"
	"fmt"
	"time"

	"github.com/comfyrun/comfyrun/internal/cost"
	"github.com/comfyrun/comfyrun/internal/platform/runpod"
)

// runSetupMonitor polls the provider until the pod is confirmed ready,
// fails, or the setup ceiling is hit. It owns the pod's initializing phase:
// it pulls provider logs to estimate progress, probes the endpoint once the
// provider reports the container running, and performs exactly one terminal
// transition before returning.
func (m *Manager) runSetupMonitor(p *Pod, gen int) {
	deadline := time.Now().Add(m.opts.SetupTimeout)
	logsSeen := 0

	for {
		select {
		case <-m.done:
			return
		case <-time.After(m.opts.PollInterval):
		}
		if m.monitorStale(p.ID, gen) {
			return
		}

		if time.Now().After(deadline) {
			m.failSetup(p, fmt.Sprintf("setup timed out after %s", m.opts.SetupTimeout))
			recordMonitorOutcome("timeout")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), m.opts.PollInterval*4)
		done := m.pollOnce(ctx, p, gen, &logsSeen)
		cancel()
		if done {
			return
		}
	}
}

// pollOnce performs one monitor tick. It reports true when the monitor
// should stop.
func (m *Manager) pollOnce(ctx context.Context, p *Pod, gen int, logsSeen *int) bool {
	provider, err := m.client.GetPod(ctx, p.ID)
	if err != nil {
		if runpod.IsNotFound(err) {
			m.failSetup(p, "pod no longer exists at provider")
			recordMonitorOutcome("vanished")
			return true
		}
		// Transient poll errors are absorbed; the next tick retries.
		m.log.V(1).Info("setup poll failed", "pod", p.ID, "error", err.Error())
		return false
	}

	switch FromProviderStatus(provider.DesiredStatus) {
	case StatusFailed:
		m.failSetup(p, "provider reported pod failed")
		recordMonitorOutcome("failed")
		return true

	case StatusRunning:
		url := runpod.EndpointURL(provider, p.Config.Port, p.Config.PublicIP)
		if err := m.prober.Probe(ctx, url); err == nil {
			if m.monitorStale(p.ID, gen) {
				return true
			}
			p.MarkReady(url)
			p.SetCost(cost.AccumulatedCost(time.Now().UTC(), p.StartTime(), p.HourlyRate()))
			m.hub.PodStatus(p.ID, string(StatusRunning), map[string]any{"endpoint_url": url})
			m.hub.SetupProgress(p.ID, StepForProgress(100), 100, p.Logs())
			m.log.Info("pod ready", "pod", p.ID, "endpoint", url)
			recordMonitorOutcome("ready")
			return true
		}
		// Container up but the server is still warming; creep forward.
		p.NudgeProgress(5)
	}

	m.ingestLogs(ctx, p, logsSeen)
	return false
}

// ingestLogs pulls provider setup logs, appends lines not yet seen, and
// publishes a progress estimate derived from the full log.
func (m *Manager) ingestLogs(ctx context.Context, p *Pod, logsSeen *int) {
	lines, err := m.client.GetPodLogs(ctx, p.ID)
	if err != nil {
		m.log.V(1).Info("log fetch failed", "pod", p.ID, "error", err.Error())
		return
	}
	raw := make([]string, 0, len(lines))
	for _, l := range lines {
		raw = append(raw, l.Line)
	}
	for _, line := range raw[min(*logsSeen, len(raw)):] {
		p.AddLog(line)
	}
	*logsSeen = len(raw)

	progress := p.RaiseProgress(EstimateProgress(raw))
	m.hub.SetupProgress(p.ID, StepForProgress(progress), progress, p.Logs())
}

// failSetup performs the single failed transition and notifies listeners.
func (m *Manager) failSetup(p *Pod, message string) {
	p.MarkFailed(message)
	m.hub.PodStatus(p.ID, string(StatusFailed), map[string]any{"error": message})
	m.hub.Error(message, p.ID)
	m.log.Info("pod setup failed", "pod", p.ID, "reason", message)
}
