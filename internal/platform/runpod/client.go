package runpod

import "context"

// DefaultBaseURL is the production REST API endpoint.
const DefaultBaseURL = "https://rest.runpod.io/v1"

// Client defines the interface for provisioning and inspecting pods.
type Client interface {
	// CreatePod provisions a new pod and returns the provider's view of it.
	CreatePod(ctx context.Context, req CreateRequest) (*Pod, error)

	// GetPod fetches a single pod by provider ID.
	GetPod(ctx context.Context, id string) (*Pod, error)

	// ListPods fetches all pods known to the provider.
	ListPods(ctx context.Context) ([]Pod, error)

	// ResumePod starts a stopped pod.
	ResumePod(ctx context.Context, id string) error

	// TerminatePod deletes a pod. Idempotent at the provider.
	TerminatePod(ctx context.Context, id string) error

	// GetPodLogs fetches the pod's setup log lines in order. A pod with no
	// logs yet yields an empty slice, not an error.
	GetPodLogs(ctx context.Context, id string) ([]LogLine, error)
}

// CreateRequest is the pod provisioning payload.
type CreateRequest struct {
	Name              string   `json:"name"`
	ImageName         string   `json:"imageName"`
	ComputeType       string   `json:"computeType"`
	GPUTypeIDs        []string `json:"gpuTypeIds"`
	GPUTypePriority   string   `json:"gpuTypePriority"`
	GPUCount          int      `json:"gpuCount"`
	VCPUCount         int      `json:"vcpuCount"`
	VolumeInGB        int      `json:"volumeInGb"`
	VolumeMountPath   string   `json:"volumeMountPath"`
	ContainerDiskInGB int      `json:"containerDiskInGb"`
	Ports             []string `json:"ports"`
	SupportPublicIP   bool     `json:"supportPublicIp"`
	CloudType         string   `json:"cloudType"`
	DockerStartCmd    []string `json:"dockerStartCmd"`
}

// Pod is the provider's read-only projection of a pod. Every field beyond
// ID may be absent depending on pod state and provider mood; consumers must
// treat zero values as unknown.
type Pod struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	DesiredStatus    string                 `json:"desiredStatus"`
	CostPerHr        float64                `json:"costPerHr"`
	CreatedAt        string                 `json:"createdAt"`
	LastStartedAt    string                 `json:"lastStartedAt"`
	GPUTypeIDs       []string               `json:"gpuTypeIds"`
	Machine          Machine                `json:"machine"`
	PortMappings     map[string]PortMapping `json:"portMappings"`
}

// Machine carries hardware metadata for a pod's host.
type Machine struct {
	GPUDisplayName string `json:"gpuDisplayName"`
}

// PortMapping describes one exposed port of a pod.
type PortMapping struct {
	InternalPort int    `json:"internalPort"`
	ExternalPort int    `json:"externalPort"`
	ExternalIP   string `json:"externalIp"`
}

// LogLine is a single ordered setup log entry.
type LogLine struct {
	Line string `json:"line"`
}
