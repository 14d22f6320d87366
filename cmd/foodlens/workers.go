package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"foodlens/pkg/registry"
)

func newWorkersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "Describe the workflow job workers",
	}

	var registryPath string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered task types",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				reg *registry.ActivityRegistry
				err error
			)
			if registryPath != "" {
				reg, err = registry.LoadRegistry(registryPath)
			} else {
				reg, err = registry.Default()
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, a := range reg.Activities {
				fmt.Fprintf(out, "%s  %s\n", bold(a.TaskType), gray("v"+a.Version+", timeout "+a.Timeout))
				fmt.Fprintf(out, "    %s\n", a.Description)
				if len(a.ErrorCodes) > 0 {
					fmt.Fprintf(out, "    errors: %s\n", strings.Join(a.ErrorCodes, ", "))
				}
			}
			return nil
		},
	}
	listCmd.Flags().StringVar(&registryPath, "registry", "", "Activity registry JSON (default: built-in)")
	cmd.AddCommand(listCmd)

	return cmd
}
