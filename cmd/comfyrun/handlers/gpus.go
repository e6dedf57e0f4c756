package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/comfyrun/comfyrun/internal/gpu"
)

// GPUs prints the built-in GPU catalog, optionally filtered by tier.
// It works without a running daemon.
func GPUs(tier string, jsonOutput bool) error {
	catalog := gpu.Default()

	specs := catalog.All()
	if tier != "" {
		specs = catalog.ByTier(tier)
		if len(specs) == 0 {
			return fmt.Errorf("no GPUs in tier %q (consumer, professional, datacenter)", tier)
		}
	}

	if jsonOutput {
		return printJSON(specs)
	}

	fmt.Printf("%-26s %-12s %6s %-14s %10s %10s\n",
		"GPU ID", "NAME", "VRAM", "TIER", "COMMUNITY", "SECURE")
	for _, s := range specs {
		fmt.Printf("%-26s %-12s %4dGB %-14s %10s %10s\n",
			s.ID,
			s.DisplayName,
			s.VRAMGB,
			s.Tier,
			fmt.Sprintf("$%.2f/hr", s.CostPerHour),
			fmt.Sprintf("$%.2f/hr", s.CostPerHour*gpu.SecureMultiplier),
		)
	}
	return nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
