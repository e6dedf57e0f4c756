package pod

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comfyrun/comfyrun/internal/events"
	"github.com/comfyrun/comfyrun/internal/gpu"
	"github.com/comfyrun/comfyrun/internal/platform/runpod"
)

// fakeClient implements runpod.Client with overridable behavior per call.
type fakeClient struct {
	createFn    func(context.Context, runpod.CreateRequest) (*runpod.Pod, error)
	getFn       func(context.Context, string) (*runpod.Pod, error)
	listFn      func(context.Context) ([]runpod.Pod, error)
	resumeFn    func(context.Context, string) error
	terminateFn func(context.Context, string) error
	logsFn      func(context.Context, string) ([]runpod.LogLine, error)
}

func (f *fakeClient) CreatePod(ctx context.Context, req runpod.CreateRequest) (*runpod.Pod, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return &runpod.Pod{ID: "fake-pod", DesiredStatus: "PENDING"}, nil
}

func (f *fakeClient) GetPod(ctx context.Context, id string) (*runpod.Pod, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return &runpod.Pod{ID: id, DesiredStatus: "PENDING"}, nil
}

func (f *fakeClient) ListPods(ctx context.Context) ([]runpod.Pod, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeClient) ResumePod(ctx context.Context, id string) error {
	if f.resumeFn != nil {
		return f.resumeFn(ctx, id)
	}
	return nil
}

func (f *fakeClient) TerminatePod(ctx context.Context, id string) error {
	if f.terminateFn != nil {
		return f.terminateFn(ctx, id)
	}
	return nil
}

func (f *fakeClient) GetPodLogs(ctx context.Context, id string) ([]runpod.LogLine, error) {
	if f.logsFn != nil {
		return f.logsFn(ctx, id)
	}
	return nil, nil
}

// fakeProber answers probes with a fixed error.
type fakeProber struct {
	err error
}

func (f *fakeProber) Probe(ctx context.Context, url string) error {
	return f.err
}

func testOptions() Options {
	return Options{
		SetupTimeout: 500 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
		CostInterval: time.Hour,
		ProbeTimeout: 50 * time.Millisecond,
	}
}

func newTestManager(t *testing.T, client runpod.Client, probeErr error) (*Manager, *events.Hub) {
	t.Helper()
	hub := events.NewHub(logr.Discard())
	m := NewManager(client, gpu.Default(), hub, logr.Discard(), testOptions())
	m.SetProber(&fakeProber{err: probeErr})
	t.Cleanup(m.Close)
	return m, hub
}

func TestCreateRegistersPod(t *testing.T) {
	var captured runpod.CreateRequest
	client := &fakeClient{
		createFn: func(_ context.Context, req runpod.CreateRequest) (*runpod.Pod, error) {
			captured = req
			return &runpod.Pod{ID: "pod-a", DesiredStatus: "PENDING", CostPerHr: 0.30}, nil
		},
	}
	m, hub := newTestManager(t, client, errors.New("not up yet"))
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)
	<-sub.C() // connected

	p, err := m.Create(context.Background(), CreateParams{
		Name:   "workbench",
		GPUID:  "NVIDIA GeForce RTX 4090",
		Config: DefaultConfig(),
	})
	require.NoError(t, err)

	assert.Equal(t, "pod-a", p.ID)
	assert.Equal(t, StatusInitializing, p.Status())
	// The provider's billed rate wins over the catalog rate.
	assert.Equal(t, 0.30, p.HourlyRate())

	got, err := m.Get("pod-a")
	require.NoError(t, err)
	assert.Same(t, p, got)

	assert.Equal(t, []string{"NVIDIA GeForce RTX 4090"}, captured.GPUTypeIDs)
	assert.Equal(t, "GPU", captured.ComputeType)
	assert.Equal(t, []string{"8188/http", "22/tcp"}, captured.Ports)
	assert.Equal(t, "COMMUNITY", captured.CloudType)
	assert.Equal(t, "/workspace", captured.VolumeMountPath)
	require.Len(t, captured.DockerStartCmd, 3)
	assert.Equal(t, "bash", captured.DockerStartCmd[0])

	ev := <-sub.C()
	assert.Equal(t, events.EventPodCreated, ev.Type)
	assert.Equal(t, "pod-a", ev.Data["pod_id"])
}

func TestCreatePublicIPAndSecureCloud(t *testing.T) {
	var captured runpod.CreateRequest
	client := &fakeClient{
		createFn: func(_ context.Context, req runpod.CreateRequest) (*runpod.Pod, error) {
			captured = req
			return &runpod.Pod{ID: "pod-b", DesiredStatus: "PENDING"}, nil
		},
	}
	m, _ := newTestManager(t, client, errors.New("not up"))

	cfg := DefaultConfig()
	cfg.PublicIP = true
	cfg.Interruptible = false
	_, err := m.Create(context.Background(), CreateParams{Name: "p", GPUID: "NVIDIA A40", Config: cfg})
	require.NoError(t, err)

	assert.Equal(t, []string{"8188/tcp", "22/tcp"}, captured.Ports)
	assert.True(t, captured.SupportPublicIP)
	assert.Equal(t, "SECURE", captured.CloudType)
}

func TestCreateUnknownGPU(t *testing.T) {
	m, _ := newTestManager(t, &fakeClient{}, nil)

	_, err := m.Create(context.Background(), CreateParams{Name: "p", GPUID: "NVIDIA Imaginary", Config: DefaultConfig()})
	require.Error(t, err)
	var pe *ProvisionError
	assert.ErrorAs(t, err, &pe)
	assert.False(t, IsNoCapacity(err))
}

func TestCreateNoCapacity(t *testing.T) {
	client := &fakeClient{
		createFn: func(context.Context, runpod.CreateRequest) (*runpod.Pod, error) {
			return nil, &runpod.APIError{
				StatusCode: 500,
				Message:    "There are no instances currently available that meet your requirements.",
				NoCapacity: true,
			}
		},
	}
	m, _ := newTestManager(t, client, nil)

	_, err := m.Create(context.Background(), CreateParams{Name: "p", GPUID: "NVIDIA H100 SXM", Config: DefaultConfig()})
	require.Error(t, err)
	assert.True(t, IsNoCapacity(err))
	assert.Equal(t, 0, m.registry.Len())
}

func TestCreateMissingInstanceID(t *testing.T) {
	client := &fakeClient{
		createFn: func(context.Context, runpod.CreateRequest) (*runpod.Pod, error) {
			return &runpod.Pod{}, nil
		},
	}
	m, _ := newTestManager(t, client, nil)

	_, err := m.Create(context.Background(), CreateParams{Name: "p", GPUID: "NVIDIA A40", Config: DefaultConfig()})
	require.Error(t, err)
	var pe *ProvisionError
	assert.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "no instance id")
	assert.Equal(t, 0, m.registry.Len())
}

func TestTerminateUnknownPod(t *testing.T) {
	m, hub := newTestManager(t, &fakeClient{}, nil)
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)
	<-sub.C() // connected

	err := m.Terminate(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	// No event and no registry mutation for an unknown ID.
	select {
	case ev := <-sub.C():
		t.Fatalf("unexpected event %s", ev.Type)
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, 0, m.registry.Len())
}

func TestTerminateRecordsFinalCost(t *testing.T) {
	m, hub := newTestManager(t, &fakeClient{}, errors.New("down"))
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)
	<-sub.C()

	p := New("pod-c", "c", "NVIDIA A40", DefaultConfig(), time.Now().UTC().Add(-time.Hour), 0.39)
	m.registry.Insert(p)

	require.NoError(t, m.Terminate(context.Background(), "pod-c"))

	assert.Equal(t, StatusTerminated, p.Status())
	assert.InDelta(t, 0.39, p.Cost(), 0.01)

	ev := <-sub.C()
	assert.Equal(t, events.EventPodTerminated, ev.Type)
}

func TestTerminateProviderNotFoundIsSuccess(t *testing.T) {
	client := &fakeClient{
		terminateFn: func(context.Context, string) error {
			return &runpod.APIError{StatusCode: 404, Message: "pod not found"}
		},
	}
	m, _ := newTestManager(t, client, nil)
	p := New("pod-d", "d", "NVIDIA A40", DefaultConfig(), time.Now().UTC(), 0.39)
	m.registry.Insert(p)

	require.NoError(t, m.Terminate(context.Background(), "pod-d"))
	assert.Equal(t, StatusTerminated, p.Status())
}

func TestResumeRequiresStoppedPod(t *testing.T) {
	m, _ := newTestManager(t, &fakeClient{}, nil)
	p := New("pod-e", "e", "NVIDIA A40", DefaultConfig(), time.Now().UTC(), 0.39)
	m.registry.Insert(p)

	err := m.Resume(context.Background(), "pod-e")
	require.Error(t, err)
	var oe *OperationError
	assert.ErrorAs(t, err, &oe)
	assert.Equal(t, "resume", oe.Op)
}

func TestResumeStoppedPod(t *testing.T) {
	m, _ := newTestManager(t, &fakeClient{}, errors.New("warming"))
	p := New("pod-f", "f", "NVIDIA A40", DefaultConfig(), time.Now().UTC(), 0.39)
	p.SetStatus(StatusStopped)
	m.registry.Insert(p)

	require.NoError(t, m.Resume(context.Background(), "pod-f"))
	assert.Equal(t, StatusInitializing, p.Status())
	assert.Equal(t, 10.0, p.Progress())
}

func TestCostSummaryMixesLiveAndSnapshot(t *testing.T) {
	m, _ := newTestManager(t, &fakeClient{}, nil)

	live := New("pod-live", "l", "NVIDIA A40", DefaultConfig(), time.Now().UTC().Add(-time.Hour), 0.39)
	live.SetStatus(StatusRunning)
	m.registry.Insert(live)

	done := New("pod-done", "d", "NVIDIA GeForce RTX 4090", DefaultConfig(), time.Now().UTC().Add(-2*time.Hour), 0.34)
	done.SetStatus(StatusTerminated)
	done.SetCost(0.5)
	m.registry.Insert(done)

	s := m.CostSummary()
	assert.Equal(t, 2, s.TotalPods)
	assert.InDelta(t, 0.39+0.5, s.TotalCost, 0.02)
	assert.Equal(t, 1, s.ByGPU["NVIDIA A40"].Count)
	assert.Equal(t, 1, s.ByGPU["NVIDIA GeForce RTX 4090"].Count)
}

func TestCostBreakdownUnknownPod(t *testing.T) {
	m, _ := newTestManager(t, &fakeClient{}, nil)
	_, err := m.CostBreakdown("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEstimateCost(t *testing.T) {
	m, _ := newTestManager(t, &fakeClient{}, nil)

	got, err := m.EstimateCost("NVIDIA GeForce RTX 4090", 10, true)
	require.NoError(t, err)
	assert.Equal(t, 3.4, got)

	_, err = m.EstimateCost("NVIDIA Imaginary", 10, true)
	assert.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	m, _ := newTestManager(t, &fakeClient{}, nil)
	m.Close()
	m.Close()
}
