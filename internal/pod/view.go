package pod

import (
	"fmt"
	"math"
	"time"
)

// View is the wire representation of a pod served by the API and pushed
// over the event stream.
type View struct {
	PodID         string   `json:"pod_id"`
	Name          string   `json:"name"`
	GPUID         string   `json:"gpu_id"`
	Status        string   `json:"status"`
	Config        Config   `json:"config"`
	StartTime     string   `json:"start_time"`
	EndpointURL   *string  `json:"endpoint_url"`
	HourlyRate    float64  `json:"hourly_rate"`
	CostSoFar     float64  `json:"cost_so_far"`
	SetupProgress float64  `json:"setup_progress"`
	LastHeartbeat string   `json:"last_heartbeat"`
	Uptime        string   `json:"uptime"`
	SetupLogs     []string `json:"setup_logs"`
	ErrorMessage  *string  `json:"error_message"`
}

// Snapshot builds a consistent point-in-time view of the pod. Monetary
// fields are rounded to cents and progress to one decimal place.
func (p *Pod) Snapshot() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	logs := p.setupLogs
	if len(logs) > maxExposedLogs {
		logs = logs[len(logs)-maxExposedLogs:]
	}
	out := make([]string, len(logs))
	copy(out, logs)

	v := View{
		PodID:         p.ID,
		Name:          p.Name,
		GPUID:         p.GPUID,
		Status:        string(p.status),
		Config:        p.Config,
		StartTime:     p.startTime.UTC().Format(time.RFC3339),
		HourlyRate:    math.Round(p.hourlyRate*100) / 100,
		CostSoFar:     math.Round(p.costSoFar*100) / 100,
		SetupProgress: math.Round(p.setupProgress*10) / 10,
		LastHeartbeat: p.lastHeartbeat.UTC().Format(time.RFC3339),
		Uptime:        formatUptime(time.Now().UTC().Sub(p.startTime)),
		SetupLogs:     out,
	}
	if p.endpointURL != "" {
		u := p.endpointURL
		v.EndpointURL = &u
	}
	if p.errorMessage != "" {
		m := p.errorMessage
		v.ErrorMessage = &m
	}
	return v
}

func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
