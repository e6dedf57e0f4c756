// Package pod implements the pod lifecycle engine: the authoritative
// in-memory registry, pod creation, per-pod setup monitoring, startup
// reconciliation against the provider, and periodic cost refresh.
package pod

import (
	"fmt"
	"math"
	"sync"
	"time"
)

const (
	// maxStoredLogs is the sliding-window size of a pod's setup log.
	maxStoredLogs = 100
	// maxExposedLogs is how many trailing log lines the API view carries.
	maxExposedLogs = 50
	// maxPendingProgress caps setup progress until readiness is confirmed.
	maxPendingProgress = 95.0
)

// Config is a pod's immutable provisioning configuration.
type Config struct {
	PublicIP        bool     `json:"public_ip" yaml:"public_ip"`
	Interruptible   bool     `json:"interruptible" yaml:"interruptible"`
	ContainerDiskGB int      `json:"container_disk_gb" yaml:"container_disk_gb"`
	VolumeDiskGB    int      `json:"volume_disk_gb" yaml:"volume_disk_gb"`
	Models          []string `json:"models" yaml:"models"`
	CustomNodes     []string `json:"custom_nodes" yaml:"custom_nodes"`
	Port            int      `json:"port" yaml:"port"`
}

// DefaultConfig returns the default pod configuration.
func DefaultConfig() Config {
	return Config{
		Interruptible:   true,
		ContainerDiskGB: 70,
		VolumeDiskGB:    50,
		Port:            8188,
	}
}

// Pod is the central entity: one provisioned remote GPU instance. All
// mutable fields are guarded by the pod's own mutex; the setup monitor,
// the cost refresh loop, and request handlers touch pods concurrently.
type Pod struct {
	// Immutable after construction.
	ID     string
	Name   string
	GPUID  string
	Config Config

	mu            sync.Mutex
	status        Status
	startTime     time.Time
	endpointURL   string
	costSoFar     float64
	hourlyRate    float64
	setupProgress float64
	lastHeartbeat time.Time
	setupLogs     []string
	errorMessage  string
}

// New constructs a pod in initializing status.
func New(id, name, gpuID string, cfg Config, start time.Time, hourlyRate float64) *Pod {
	return &Pod{
		ID:            id,
		Name:          name,
		GPUID:         gpuID,
		Config:        cfg,
		status:        StatusInitializing,
		startTime:     start,
		hourlyRate:    hourlyRate,
		lastHeartbeat: time.Now().UTC(),
	}
}

// Status returns the pod's current lifecycle status.
func (p *Pod) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// StartTime returns the pod's start timestamp.
func (p *Pod) StartTime() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.startTime
}

// HourlyRate returns the pod's billed hourly rate.
func (p *Pod) HourlyRate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hourlyRate
}

// Cost returns the last recorded accumulated cost.
func (p *Pod) Cost() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.costSoFar
}

// Progress returns the current setup progress percentage.
func (p *Pod) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.setupProgress
}

// EndpointURL returns the reachable endpoint, or "" until ready.
func (p *Pod) EndpointURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.endpointURL
}

// ErrorMessage returns the recorded error message, or "".
func (p *Pod) ErrorMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errorMessage
}

// AddLog appends a timestamped setup log line, keeping the last
// maxStoredLogs entries.
func (p *Pod) AddLog(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.appendLogLocked(message)
}

func (p *Pod) appendLogLocked(message string) {
	entry := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message)
	p.setupLogs = append(p.setupLogs, entry)
	if len(p.setupLogs) > maxStoredLogs {
		p.setupLogs = p.setupLogs[len(p.setupLogs)-maxStoredLogs:]
	}
}

// Logs returns a copy of the stored setup log.
func (p *Pod) Logs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.setupLogs))
	copy(out, p.setupLogs)
	return out
}

// RaiseProgress lifts the setup progress floor. Progress is monotone while
// initializing: a value below the current one is ignored. Values are capped
// at maxPendingProgress; only a ready transition reaches 100.
func (p *Pod) RaiseProgress(v float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v > maxPendingProgress {
		v = maxPendingProgress
	}
	if v > p.setupProgress {
		p.setupProgress = v
	}
	return p.setupProgress
}

// NudgeProgress bumps progress by a small fixed increment, capped below
// readiness. Used when the container runs but the server is not answering yet.
func (p *Pod) NudgeProgress(delta float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setupProgress = math.Min(p.setupProgress+delta, maxPendingProgress)
	return p.setupProgress
}

// MarkReady transitions the pod to running with a confirmed endpoint.
func (p *Pod) MarkReady(endpointURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = StatusRunning
	p.setupProgress = 100
	p.endpointURL = endpointURL
	p.errorMessage = ""
	p.appendLogLocked("ComfyUI is running")
	p.appendLogLocked("Endpoint: " + endpointURL)
}

// MarkFailed transitions the pod to failed with an error message.
func (p *Pod) MarkFailed(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = StatusFailed
	p.errorMessage = message
	p.appendLogLocked("Setup failed: " + message)
}

// SetStatus sets the lifecycle status directly. Used by operator actions
// and reconciliation, not by the monitor's ready/failed transitions.
func (p *Pod) SetStatus(s Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = s
}

// SetCost records a freshly computed accumulated cost and bumps the
// heartbeat.
func (p *Pod) SetCost(cost float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.costSoFar = cost
	p.lastHeartbeat = time.Now().UTC()
}

// SetEndpointURL records the resolved endpoint address.
func (p *Pod) SetEndpointURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endpointURL = url
}

// SetProgress overwrites progress. Reserved for reconciliation, which may
// seed a reconstructed pod at an arbitrary value.
func (p *Pod) SetProgress(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setupProgress = v
}

// UptimeSeconds returns the wall-clock seconds since the pod started.
func (p *Pod) UptimeSeconds() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := time.Now().UTC().Sub(p.startTime)
	if d < 0 {
		return 0
	}
	return d.Seconds()
}

// UptimeFormatted returns the uptime as hh:mm:ss.
func (p *Pod) UptimeFormatted() string {
	total := int(p.UptimeSeconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
