package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"foodlens/internal/credentials"
)

func newKeysCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
	}

	var openai, serpapi string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Store API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(cmd); err != nil {
				return err
			}
			defer cli.close()
			keys := credentials.Keys{OpenAI: openai, SerpAPI: serpapi}
			if err := cli.app.Credentials.Save(cmd.Context(), keys); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "API keys saved")
			return nil
		},
	}
	setCmd.Flags().StringVar(&openai, "openai", "", "OpenAI-compatible API key")
	setCmd.Flags().StringVar(&serpapi, "serpapi", "", "SerpAPI key")
	cmd.AddCommand(setCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the active API keys, masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(cmd); err != nil {
				return err
			}
			defer cli.close()
			out := cmd.OutOrStdout()
			keys := cli.app.Keys
			fmt.Fprintf(out, "%s %s\n", bold("openai: "), maskOrUnset(keys.OpenAI))
			fmt.Fprintf(out, "%s %s\n", bold("serpapi:"), maskOrUnset(keys.SerpAPI))
			if !cli.app.KeysConfigured() {
				printWarning(out, "keys are incomplete; analysis is disabled")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Make one minimal call to each backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(cmd); err != nil {
				return err
			}
			defer cli.close()
			if !cli.app.KeysConfigured() {
				return fmt.Errorf("API keys are not configured")
			}
			if err := credentials.Verify(cmd.Context(), cli.app.Completer, cli.app.Backend); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), red("✘ "+err.Error()))
				return err
			}
			printSuccess(cmd.OutOrStdout(), "both backends answered")
			return nil
		},
	})

	return cmd
}

func maskOrUnset(key string) string {
	if key == "" {
		return gray("(not set)")
	}
	return credentials.Mask(key)
}
