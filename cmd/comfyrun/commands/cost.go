package commands

import (
	"github.com/spf13/cobra"

	"github.com/comfyrun/comfyrun/cmd/comfyrun/handlers"
)

// Cost returns the cost reporting command group.
func Cost() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Inspect pod costs",
	}

	cmd.AddCommand(costSummary())
	cmd.AddCommand(costPod())
	cmd.AddCommand(costEstimate())

	return cmd
}

func costSummary() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show aggregate cost across all pods",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.CostSummary(cmd.Context(), apiURL(cmd), jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func costPod() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "pod POD_ID",
		Short: "Show the detailed cost report for one pod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.CostPod(cmd.Context(), apiURL(cmd), args[0], jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func costEstimate() *cobra.Command {
	var gpuID string
	var hours float64
	var onDemand bool

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the cost of running a GPU for a duration",
		Long: `Project the cost of a GPU type over a fixed number of hours using
the built-in price catalog. Works without a running daemon.
`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.CostEstimate(gpuID, hours, !onDemand)
		},
	}
	cmd.Flags().StringVarP(&gpuID, "gpu", "g", "NVIDIA GeForce RTX 4090", "GPU type ID")
	cmd.Flags().Float64Var(&hours, "hours", 1, "Duration in hours")
	cmd.Flags().BoolVar(&onDemand, "on-demand", false, "Use non-interruptible (secure cloud) billing")
	return cmd
}
