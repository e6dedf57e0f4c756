// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated to
// handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the comfyrun CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comfyrun",
		Short: "Run ComfyUI on RunPod GPU instances",
	}

	cmd.PersistentFlags().String("api-url", "", "Base URL of the comfyrun daemon (default: http://127.0.0.1:8000)")

	cmd.AddCommand(Serve())
	cmd.AddCommand(Pods())
	cmd.AddCommand(GPUs())
	cmd.AddCommand(Cost())
	cmd.AddCommand(Version())

	return cmd
}

func apiURL(cmd *cobra.Command) string {
	url, _ := cmd.Flags().GetString("api-url")
	return url
}
