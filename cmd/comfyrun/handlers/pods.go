package handlers

import (
	"context"
	"fmt"

	"github.com/comfyrun/comfyrun/internal/client"
	"github.com/comfyrun/comfyrun/internal/pod"
	"github.com/comfyrun/comfyrun/internal/ui/tui"
)

// CreateOptions are the pod creation flags.
type CreateOptions struct {
	Name            string
	GPUID           string
	Models          []string
	CustomNodes     []string
	PublicIP        bool
	OnDemand        bool
	ContainerDiskGB int
	VolumeDiskGB    int
	Port            int
}

// PodsList prints all tracked pods.
func PodsList(ctx context.Context, baseURL string, jsonOutput bool) error {
	api := client.New(baseURL)
	pods, err := api.ListPods(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(pods)
	}
	if len(pods) == 0 {
		fmt.Println("No pods. Create one with: comfyrun pods create NAME --gpu GPU_ID")
		return nil
	}
	printPodTable(pods)
	return nil
}

// PodsCreate provisions a new pod and prints its initial state.
func PodsCreate(ctx context.Context, baseURL string, opts CreateOptions, jsonOutput bool) error {
	cfg := pod.Config{
		PublicIP:        opts.PublicIP,
		Interruptible:   !opts.OnDemand,
		ContainerDiskGB: opts.ContainerDiskGB,
		VolumeDiskGB:    opts.VolumeDiskGB,
		Models:          opts.Models,
		CustomNodes:     opts.CustomNodes,
		Port:            opts.Port,
	}

	api := client.New(baseURL)
	v, err := api.CreatePod(ctx, client.CreatePodRequest{
		Name:   opts.Name,
		GPUID:  opts.GPUID,
		Config: &cfg,
	})
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(v)
	}

	fmt.Printf("Pod %s created on %s ($%.2f/hr)\n", v.PodID, v.GPUID, v.HourlyRate)
	fmt.Printf("Setup in progress; follow it with:\n")
	fmt.Printf("  comfyrun pods watch\n")
	fmt.Printf("  comfyrun pods logs %s\n", v.PodID)
	return nil
}

// PodsTerminate deletes a pod.
func PodsTerminate(ctx context.Context, baseURL, id string) error {
	api := client.New(baseURL)
	if err := api.TerminatePod(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Pod %s terminated\n", id)
	return nil
}

// PodsResume restarts a stopped pod.
func PodsResume(ctx context.Context, baseURL, id string) error {
	api := client.New(baseURL)
	v, err := api.ResumePod(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Pod %s resuming (status: %s)\n", v.PodID, v.Status)
	return nil
}

// PodsLogs prints a pod's setup log.
func PodsLogs(ctx context.Context, baseURL, id string) error {
	api := client.New(baseURL)
	logs, err := api.GetPodLogs(ctx, id)
	if err != nil {
		return err
	}
	for _, line := range logs {
		fmt.Println(line)
	}
	return nil
}

// PodsWatch runs the live dashboard.
func PodsWatch(baseURL string) error {
	return tui.Run(client.New(baseURL))
}

func printPodTable(pods []pod.View) {
	fmt.Printf("%-14s %-20s %-26s %-14s %9s %8s %10s\n",
		"POD ID", "NAME", "GPU", "STATUS", "PROGRESS", "COST", "UPTIME")
	for _, v := range pods {
		fmt.Printf("%-14s %-20s %-26s %-14s %8.1f%% %8s %10s\n",
			truncate(v.PodID, 14),
			truncate(v.Name, 20),
			truncate(v.GPUID, 26),
			v.Status,
			v.SetupProgress,
			fmt.Sprintf("$%.2f", v.CostSoFar),
			v.Uptime,
		)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
