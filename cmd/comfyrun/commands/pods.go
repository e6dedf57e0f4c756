package commands

import (
	"github.com/spf13/cobra"

	"github.com/comfyrun/comfyrun/cmd/comfyrun/handlers"
)

// Pods returns the pod management command group.
func Pods() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pods",
		Short: "Manage ComfyUI pods",
	}

	cmd.AddCommand(podsList())
	cmd.AddCommand(podsCreate())
	cmd.AddCommand(podsTerminate())
	cmd.AddCommand(podsResume())
	cmd.AddCommand(podsLogs())
	cmd.AddCommand(podsWatch())

	return cmd
}

func podsList() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all tracked pods",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.PodsList(cmd.Context(), apiURL(cmd), jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func podsCreate() *cobra.Command {
	var opts handlers.CreateOptions
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new pod",
		Long: `Provision a new ComfyUI pod on the requested GPU type.

Model and custom node short names are resolved to download URLs by the
daemon; run 'comfyrun gpus' for available GPU types.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			return handlers.PodsCreate(cmd.Context(), apiURL(cmd), opts, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&opts.GPUID, "gpu", "g", "NVIDIA GeForce RTX 4090", "GPU type ID")
	cmd.Flags().StringSliceVar(&opts.Models, "model", nil, "Models to download (repeatable)")
	cmd.Flags().StringSliceVar(&opts.CustomNodes, "custom-node", nil, "Custom nodes to install (repeatable)")
	cmd.Flags().BoolVar(&opts.PublicIP, "public-ip", false, "Request a public IP instead of the proxy endpoint")
	cmd.Flags().BoolVar(&opts.OnDemand, "on-demand", false, "Use non-interruptible (secure cloud) billing")
	cmd.Flags().IntVar(&opts.ContainerDiskGB, "container-disk", 70, "Container disk size in GB")
	cmd.Flags().IntVar(&opts.VolumeDiskGB, "volume-disk", 50, "Persistent volume size in GB")
	cmd.Flags().IntVar(&opts.Port, "port", 8188, "ComfyUI port")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func podsTerminate() *cobra.Command {
	return &cobra.Command{
		Use:   "terminate POD_ID",
		Short: "Terminate a pod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.PodsTerminate(cmd.Context(), apiURL(cmd), args[0])
		},
	}
}

func podsResume() *cobra.Command {
	return &cobra.Command{
		Use:   "resume POD_ID",
		Short: "Resume a stopped pod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.PodsResume(cmd.Context(), apiURL(cmd), args[0])
		},
	}
}

func podsLogs() *cobra.Command {
	return &cobra.Command{
		Use:   "logs POD_ID",
		Short: "Show a pod's setup log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.PodsLogs(cmd.Context(), apiURL(cmd), args[0])
		},
	}
}

func podsWatch() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch pods in a live dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.PodsWatch(apiURL(cmd))
		},
	}
}
