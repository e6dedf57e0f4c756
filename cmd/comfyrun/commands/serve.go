package commands

import (
	"github.com/spf13/cobra"

	"github.com/comfyrun/comfyrun/cmd/comfyrun/handlers"
)

// Serve returns the command that runs the lifecycle daemon.
func Serve() *cobra.Command {
	var configPath string
	var verbosity int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pod lifecycle daemon",
		Long: `Start the comfyrun daemon: the HTTP API, the server-sent event
stream, the setup monitors and the cost refresh loop.

On startup the daemon reconciles its registry against the provider, so
pods created by a previous run are adopted rather than forgotten.

The RunPod API key is read from RUNPOD_API_KEY or the config file.
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Serve(cmd.Context(), configPath, verbosity, version)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().IntVarP(&verbosity, "verbosity", "v", 0, "Log verbosity (0-2)")

	return cmd
}
