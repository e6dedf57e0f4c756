package pod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/comfyrun/comfyrun/internal/cost"
	"github.com/comfyrun/comfyrun/internal/events"
	"github.com/comfyrun/comfyrun/internal/gpu"
	"github.com/comfyrun/comfyrun/internal/platform/runpod"
)

// DefaultImage is the container image pods run when none is configured.
const DefaultImage = "runpod/pytorch:2.1.0-py3.10-cuda11.8.0-devel-ubuntu22.04"

// Options configures the manager's background behavior.
type Options struct {
	// Image is the container image for new pods.
	Image string
	// SetupTimeout is the ceiling on pod setup before it is marked failed.
	SetupTimeout time.Duration
	// PollInterval is the setup monitor's polling cadence.
	PollInterval time.Duration
	// CostInterval is the cost refresh loop's cadence.
	CostInterval time.Duration
	// ProbeTimeout bounds a single endpoint readiness probe.
	ProbeTimeout time.Duration
}

// DefaultOptions returns the standard manager timings.
func DefaultOptions() Options {
	return Options{
		Image:        DefaultImage,
		SetupTimeout: 15 * time.Minute,
		PollInterval: 5 * time.Second,
		CostInterval: 60 * time.Second,
		ProbeTimeout: 10 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Image == "" {
		o.Image = d.Image
	}
	if o.SetupTimeout <= 0 {
		o.SetupTimeout = d.SetupTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = d.PollInterval
	}
	if o.CostInterval <= 0 {
		o.CostInterval = d.CostInterval
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = d.ProbeTimeout
	}
	return o
}

// Manager orchestrates the pod lifecycle: creation, setup monitoring,
// reconciliation against the provider, cost refresh, and teardown.
type Manager struct {
	client   runpod.Client
	catalog  *gpu.Catalog
	calc     *cost.Calculator
	hub      *events.Hub
	registry *Registry
	prober   Prober
	log      logr.Logger
	opts     Options

	done chan struct{}
	wg   sync.WaitGroup

	// generations invalidates setup monitors: each startMonitor bumps the
	// pod's generation, and a monitor holding a stale generation exits on
	// its next tick. At most one live monitor per pod.
	mu          sync.Mutex
	generations map[string]int
	closed      bool
}

// NewManager wires a manager from its collaborators.
func NewManager(client runpod.Client, catalog *gpu.Catalog, hub *events.Hub, log logr.Logger, opts Options) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		client:      client,
		catalog:     catalog,
		calc:        cost.NewCalculator(catalog),
		hub:         hub,
		registry:    NewRegistry(),
		prober:      NewHTTPProber(opts.ProbeTimeout),
		log:         log,
		opts:        opts,
		done:        make(chan struct{}),
		generations: make(map[string]int),
	}
}

// SetProber swaps the readiness prober. Must be called before Run.
func (m *Manager) SetProber(p Prober) {
	m.prober = p
}

// CreateParams are the user-facing inputs to pod creation.
type CreateParams struct {
	Name   string
	GPUID  string
	Config Config
}

// Create provisions a new pod and starts its setup monitor. The returned
// pod is already registered and observable; setup continues asynchronously.
func (m *Manager) Create(ctx context.Context, params CreateParams) (*Pod, error) {
	spec, ok := m.catalog.ByID(params.GPUID)
	if !ok {
		return nil, &ProvisionError{Cause: fmt.Errorf("unknown gpu type %q", params.GPUID)}
	}

	req := m.buildCreateRequest(params)
	created, err := m.client.CreatePod(ctx, req)
	if err != nil {
		m.hub.Error(runpod.Message(err), "")
		if runpod.IsNoCapacity(err) {
			return nil, &ProvisionError{Cause: err, NoCapacity: true}
		}
		return nil, &ProvisionError{Cause: err}
	}
	if created.ID == "" {
		err := fmt.Errorf("provider returned no instance id")
		m.hub.Error(err.Error(), "")
		return nil, &ProvisionError{Cause: err}
	}

	rate := m.catalog.Cost(params.GPUID, params.Config.Interruptible)
	if created.CostPerHr > 0 {
		rate = created.CostPerHr
	}
	start := runpod.ParseTimestampOr(created.CreatedAt, time.Now().UTC())

	p := New(created.ID, params.Name, params.GPUID, params.Config, start, rate)
	p.AddLog(fmt.Sprintf("Pod created on %s", spec.DisplayName))
	p.AddLog("Waiting for container to start")
	m.registry.Insert(p)

	recordPodCreated(params.GPUID)
	m.hub.PodCreated(p.ID, p.Name, p.GPUID)
	m.log.Info("pod created", "pod", p.ID, "name", p.Name, "gpu", p.GPUID, "rate", rate)

	m.startMonitor(p)
	return p, nil
}

func (m *Manager) buildCreateRequest(params CreateParams) runpod.CreateRequest {
	cfg := params.Config
	ports := []string{fmt.Sprintf("%d/http", cfg.Port), "22/tcp"}
	if cfg.PublicIP {
		ports = []string{fmt.Sprintf("%d/tcp", cfg.Port), "22/tcp"}
	}
	cloudType := "SECURE"
	if cfg.Interruptible {
		cloudType = "COMMUNITY"
	}
	return runpod.CreateRequest{
		Name:              params.Name,
		ImageName:         m.opts.Image,
		ComputeType:       "GPU",
		GPUTypeIDs:        []string{params.GPUID},
		GPUTypePriority:   "availability",
		GPUCount:          1,
		VCPUCount:         2,
		VolumeInGB:        cfg.VolumeDiskGB,
		VolumeMountPath:   "/workspace",
		ContainerDiskInGB: cfg.ContainerDiskGB,
		Ports:             ports,
		SupportPublicIP:   cfg.PublicIP,
		CloudType:         cloudType,
		DockerStartCmd:    []string{"bash", "-c", BuildStartScript(cfg)},
	}
}

// Get returns the tracked pod with the given ID.
func (m *Manager) Get(id string) (*Pod, error) {
	p, ok := m.registry.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// List returns views of all tracked pods, ordered by ID.
func (m *Manager) List() []View {
	pods := m.registry.List()
	out := make([]View, 0, len(pods))
	for _, p := range pods {
		out = append(out, p.Snapshot())
	}
	return out
}

// Resume restarts a stopped pod and re-arms its setup monitor.
func (m *Manager) Resume(ctx context.Context, id string) error {
	p, ok := m.registry.Get(id)
	if !ok {
		return ErrNotFound
	}
	if p.Status() != StatusStopped {
		return &OperationError{Op: "resume", PodID: id, Cause: fmt.Errorf("pod is %s, not stopped", p.Status())}
	}
	if err := m.client.ResumePod(ctx, id); err != nil {
		m.hub.Error(runpod.Message(err), id)
		return &OperationError{Op: "resume", PodID: id, Cause: err}
	}
	p.SetStatus(StatusInitializing)
	p.SetProgress(10)
	p.AddLog("Resuming pod")
	m.hub.PodStatus(id, string(StatusInitializing), nil)
	m.log.Info("pod resumed", "pod", id)
	m.startMonitor(p)
	return nil
}

// Terminate deletes the pod at the provider and records its terminal state.
// Unknown IDs are an error and cause no mutation. Provider-side not-found is
// treated as success: the pod is already gone.
func (m *Manager) Terminate(ctx context.Context, id string) error {
	p, ok := m.registry.Get(id)
	if !ok {
		return ErrNotFound
	}
	if err := m.client.TerminatePod(ctx, id); err != nil && !runpod.IsNotFound(err) {
		m.hub.Error(runpod.Message(err), id)
		return &OperationError{Op: "terminate", PodID: id, Cause: err}
	}

	m.invalidateMonitor(id)
	if p.Status().Active() {
		p.SetCost(cost.AccumulatedCost(time.Now().UTC(), p.StartTime(), p.HourlyRate()))
	}
	p.SetStatus(StatusTerminated)
	p.AddLog("Pod terminated")

	recordPodTerminated()
	m.hub.PodTerminated(id)
	m.log.Info("pod terminated", "pod", id, "final_cost", p.Cost())
	return nil
}

// CostBreakdown computes the detailed cost report for one pod.
func (m *Manager) CostBreakdown(id string) (cost.Breakdown, error) {
	p, ok := m.registry.Get(id)
	if !ok {
		return cost.Breakdown{}, ErrNotFound
	}
	return m.calc.Breakdown(p.GPUID, p.StartTime(), p.Config.Interruptible), nil
}

// CostSummary aggregates cost across every tracked pod. Active pods
// contribute a live figure; stopped, failed and terminated pods contribute
// their recorded cost.
func (m *Manager) CostSummary() cost.Summary {
	pods := m.registry.List()
	items := make([]cost.Item, 0, len(pods))
	now := time.Now().UTC()
	for _, p := range pods {
		item := cost.Item{
			GPUID:         p.GPUID,
			Start:         p.StartTime(),
			Interruptible: p.Config.Interruptible,
			Active:        p.Status().Active(),
			Snapshot:      p.Cost(),
		}
		// Pods adopted under an uncataloged GPU have no catalog rate; feed
		// their live cost through the snapshot path instead.
		if _, known := m.catalog.ByID(p.GPUID); !known && item.Active {
			item.Active = false
			item.Snapshot = cost.AccumulatedCost(now, p.StartTime(), p.HourlyRate())
		}
		items = append(items, item)
	}
	return m.calc.Aggregate(items)
}

// EstimateCost projects the cost of running a GPU type for a duration.
func (m *Manager) EstimateCost(gpuID string, hours float64, interruptible bool) (float64, error) {
	if _, ok := m.catalog.ByID(gpuID); !ok {
		return 0, fmt.Errorf("unknown gpu type %q", gpuID)
	}
	return m.calc.EstimateGPU(gpuID, hours, interruptible), nil
}

// Run drives the periodic cost refresh loop until the context is canceled
// or the manager is closed.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.opts.CostInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
			m.refreshCosts()
		}
	}
}

func (m *Manager) refreshCosts() {
	for _, p := range m.registry.List() {
		if !p.Status().Active() {
			continue
		}
		c := cost.AccumulatedCost(time.Now().UTC(), p.StartTime(), p.HourlyRate())
		p.SetCost(c)
		m.hub.CostUpdate(p.ID, c, p.HourlyRate())
		observeActiveCost(p.GPUID, c)
	}
	updatePodGauges(m.registry.List())
}

// Close stops the cost loop and all setup monitors, waiting briefly for
// them to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()
	close(m.done)

	stopped := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		m.log.Info("timed out waiting for background workers")
	}
}

// startMonitor arms a setup monitor for the pod, invalidating any monitor
// already watching it.
func (m *Manager) startMonitor(p *Pod) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.generations[p.ID]++
	gen := m.generations[p.ID]
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		m.runSetupMonitor(p, gen)
	}()
}

func (m *Manager) invalidateMonitor(id string) {
	m.mu.Lock()
	m.generations[id]++
	m.mu.Unlock()
}

func (m *Manager) monitorStale(id string, gen int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generations[id] != gen
}
