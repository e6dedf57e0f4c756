package handlers

import (
	"context"
	"fmt"
	"sort"

	"github.com/comfyrun/comfyrun/internal/client"
	"github.com/comfyrun/comfyrun/internal/cost"
	"github.com/comfyrun/comfyrun/internal/gpu"
)

// CostSummary prints the aggregate cost report from the daemon.
func CostSummary(ctx context.Context, baseURL string, jsonOutput bool) error {
	api := client.New(baseURL)
	summary, err := api.CostSummary(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(summary)
	}

	fmt.Printf("Total: %s across %d pod(s)\n", cost.FormatUSD(summary.TotalCost), summary.TotalPods)
	if len(summary.ByGPU) == 0 {
		return nil
	}

	ids := make([]string, 0, len(summary.ByGPU))
	for id := range summary.ByGPU {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Println()
	for _, id := range ids {
		g := summary.ByGPU[id]
		fmt.Printf("  %-26s %2d pod(s)  %s\n", id, g.Count, cost.FormatUSD(g.Cost))
	}
	return nil
}

// CostPod prints the detailed cost report for one pod.
func CostPod(ctx context.Context, baseURL, id string, jsonOutput bool) error {
	api := client.New(baseURL)
	b, err := api.CostBreakdown(ctx, id)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(b)
	}

	fmt.Printf("Pod %s (%s)\n", id, b.CloudType)
	fmt.Printf("  Rate:     %s\n", cost.FormatRate(b.HourlyRate))
	fmt.Printf("  Elapsed:  %.2f hours\n", b.ElapsedHours)
	fmt.Printf("  Cost:     %s\n", cost.FormatUSD(b.TotalCost))
	fmt.Println("  Projections:")
	fmt.Printf("    24 hours: %s\n", cost.FormatUSD(b.Projections.Hours24))
	fmt.Printf("    7 days:   %s\n", cost.FormatUSD(b.Projections.Days7))
	fmt.Printf("    30 days:  %s\n", cost.FormatUSD(b.Projections.Days30))
	return nil
}

// CostEstimate projects a GPU's cost over a duration using the built-in
// catalog; no daemon required.
func CostEstimate(gpuID string, hours float64, interruptible bool) error {
	if hours <= 0 {
		return fmt.Errorf("hours must be positive")
	}
	catalog := gpu.Default()
	if _, ok := catalog.ByID(gpuID); !ok {
		return fmt.Errorf("unknown gpu %q; run 'comfyrun gpus' for available types", gpuID)
	}

	calc := cost.NewCalculator(catalog)
	total := calc.EstimateGPU(gpuID, hours, interruptible)
	rate := calc.HourlyRate(gpuID, interruptible)

	billing := "community (interruptible)"
	if !interruptible {
		billing = "secure (on-demand)"
	}
	fmt.Printf("%s for %.1f hours, %s billing:\n", catalog.Format(gpuID), hours, billing)
	fmt.Printf("  %s at %s\n", cost.FormatUSD(total), cost.FormatRate(rate))
	return nil
}
