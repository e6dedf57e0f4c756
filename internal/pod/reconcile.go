package pod

import (
	"context"
	"fmt"
	"time"

	"github.com/comfyrun/comfyrun/internal/cost"
	"github.com/comfyrun/comfyrun/internal/platform/runpod"
	"github.com/comfyrun/comfyrun/internal/util/async"
	"github.com/comfyrun/comfyrun/internal/util/retry"
)

const (
	// unknownGPUID marks a reconciled pod whose GPU type could not be
	// recovered from any provider field.
	unknownGPUID = "Unknown"
	// stoppedNominalHours is the nominal charge attributed to a pod found
	// already stopped, where the true runtime is unknowable.
	stoppedNominalHours = 0.1
	// recoveredProgress seeds a pod found running but not yet answering.
	recoveredProgress = 50
)

// Reconcile adopts pods that exist at the provider but are unknown locally,
// typically after a restart. Listing is retried with backoff; if it still
// fails the registry is left as-is and the error returned, so callers can
// log and continue serving. Running pods are probed in parallel: reachable
// ones surface as running with their endpoint, unreachable ones re-enter
// the initializing phase under a fresh setup monitor.
func (m *Manager) Reconcile(ctx context.Context) error {
	var providerPods []runpod.Pod
	err := retry.WithExponentialBackoff(ctx, func() error {
		pods, err := m.client.ListPods(ctx)
		if err != nil {
			return err
		}
		providerPods = pods
		return nil
	}, retry.WithMaxRetries(2), retry.WithInitialDelay(500*time.Millisecond))
	if err != nil {
		return fmt.Errorf("reconcile: listing provider pods: %w", err)
	}

	var tasks []async.Task
	adopted := 0
	for i := range providerPods {
		pp := providerPods[i]
		if _, exists := m.registry.Get(pp.ID); exists {
			continue
		}
		adopted++
		if FromProviderStatus(pp.DesiredStatus).Active() {
			tasks = append(tasks, async.Task{
				Name: "adopt " + pp.ID,
				Func: func(ctx context.Context) error {
					m.adoptActive(ctx, &pp)
					return nil
				},
			})
			continue
		}
		m.adoptInactive(&pp)
	}
	if len(tasks) > 0 {
		// Adoption tasks never return errors; RunParallel is used purely
		// for the fan-out.
		_ = async.RunParallel(ctx, tasks)
	}

	updatePodGauges(m.registry.List())
	m.log.Info("reconciliation complete", "provider_pods", len(providerPods), "adopted", adopted)
	return nil
}

// adoptActive registers a provider pod that claims to be running or
// starting. Reachability decides its local status: a probe failure means
// the container is up but the server is not, so the pod re-enters setup.
func (m *Manager) adoptActive(ctx context.Context, pp *runpod.Pod) {
	gpuID, rate := m.recoverIdentity(ctx, pp)
	p := m.rebuild(pp, gpuID, rate)

	if FromProviderStatus(pp.DesiredStatus) == StatusRunning {
		url := runpod.EndpointURL(pp, p.Config.Port, p.Config.PublicIP)
		if err := m.prober.Probe(ctx, url); err == nil {
			p.MarkReady(url)
			p.SetCost(cost.AccumulatedCost(time.Now().UTC(), p.StartTime(), rate))
			m.registry.Insert(p)
			m.hub.PodStatus(p.ID, string(StatusRunning), map[string]any{"endpoint_url": url})
			m.log.Info("adopted running pod", "pod", p.ID, "gpu", gpuID, "endpoint", url)
			return
		}
	}

	p.SetStatus(StatusInitializing)
	p.SetProgress(recoveredProgress)
	p.AddLog("Recovered pod awaiting readiness")
	m.registry.Insert(p)
	m.hub.PodStatus(p.ID, string(StatusInitializing), nil)
	m.log.Info("adopted initializing pod", "pod", p.ID, "gpu", gpuID)
	m.startMonitor(p)
}

// adoptInactive registers a stopped or failed provider pod. A stopped pod's
// true runtime is gone, so it carries a nominal charge instead of zero.
func (m *Manager) adoptInactive(pp *runpod.Pod) {
	gpuID, rate := m.recoverIdentity(context.Background(), pp)
	p := m.rebuild(pp, gpuID, rate)

	status := FromProviderStatus(pp.DesiredStatus)
	p.SetStatus(status)
	if status == StatusStopped {
		p.SetCost(stoppedNominalHours * rate)
	}
	m.registry.Insert(p)
	m.log.Info("adopted inactive pod", "pod", p.ID, "status", status, "gpu", gpuID)
}

// rebuild reconstructs a local pod from the provider record with default
// configuration, since the original create parameters were not persisted.
func (m *Manager) rebuild(pp *runpod.Pod, gpuID string, rate float64) *Pod {
	start := runpod.ParseTimestampOr(pp.LastStartedAt, runpod.ParseTimestampOr(pp.CreatedAt, time.Now().UTC()))
	name := pp.Name
	if name == "" {
		name = pp.ID
	}
	return New(pp.ID, name, gpuID, DefaultConfig(), start, rate)
}

// recoverIdentity determines a provider pod's GPU type and rate. The list
// endpoint often elides hardware fields, so the chain is: explicit GPU type
// IDs, machine display name, a detail fetch repeating both, and finally a
// reverse lookup from the billed hourly cost. When everything fails the
// pod is tracked under a sentinel GPU with whatever rate the provider bills.
func (m *Manager) recoverIdentity(ctx context.Context, pp *runpod.Pod) (string, float64) {
	if id, rate, ok := m.identityFrom(pp); ok {
		return id, rate
	}
	if detail, err := m.client.GetPod(ctx, pp.ID); err == nil {
		if id, rate, ok := m.identityFrom(detail); ok {
			return id, rate
		}
		if detail.CostPerHr > 0 {
			pp = detail
		}
	}
	if spec, ok := m.catalog.ByHourlyCost(pp.CostPerHr); ok {
		return spec.ID, pp.CostPerHr
	}
	return unknownGPUID, pp.CostPerHr
}

func (m *Manager) identityFrom(pp *runpod.Pod) (string, float64, bool) {
	rate := func(id string) float64 {
		if pp.CostPerHr > 0 {
			return pp.CostPerHr
		}
		return m.catalog.Cost(id, true)
	}
	if len(pp.GPUTypeIDs) > 0 {
		if _, ok := m.catalog.ByID(pp.GPUTypeIDs[0]); ok {
			return pp.GPUTypeIDs[0], rate(pp.GPUTypeIDs[0]), true
		}
	}
	if pp.Machine.GPUDisplayName != "" {
		if spec, ok := m.catalog.ByDisplayName(pp.Machine.GPUDisplayName); ok {
			return spec.ID, rate(spec.ID), true
		}
	}
	return "", 0, false
}
