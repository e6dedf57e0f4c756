package commands

import (
	"github.com/spf13/cobra"

	"github.com/comfyrun/comfyrun/cmd/comfyrun/handlers"
)

// GPUs returns the command listing available GPU types and rates.
func GPUs() *cobra.Command {
	var jsonOutput bool
	var tier string

	cmd := &cobra.Command{
		Use:   "gpus",
		Short: "List available GPU types and hourly rates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.GPUs(tier, jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().StringVar(&tier, "tier", "", "Filter by tier (consumer, professional, datacenter)")
	return cmd
}
