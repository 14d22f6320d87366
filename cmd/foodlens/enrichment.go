package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"foodlens/internal/enrichment"
)

func newEnrichmentCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrichment",
		Short: "Inspect cached condition guidance",
	}

	var showContent bool
	showCmd := &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show the cached search results for a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(cmd); err != nil {
				return err
			}
			defer cli.close()

			out := cmd.OutOrStdout()
			rec, err := cli.app.Profiles.Record(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				fmt.Fprintln(out, gray("no cached guidance for "+args[0]))
				return nil
			}

			fmt.Fprintf(out, "%s %s\n", bold("searched:"), rec.CreatedAt().Local().Format("2006-01-02 15:04"))
			fmt.Fprintf(out, "%s %d of %d\n", bold("successful:"), rec.SuccessfulSearches, rec.TotalConditions)
			for _, tr := range rec.SearchResults {
				status := green(string(tr.Status))
				if tr.Status == enrichment.StatusError {
					status = red(string(tr.Status))
				}
				fmt.Fprintf(out, "  %s %s (%s) %s\n", cyan(string(tr.Category)), tr.Condition, status, gray(fmt.Sprintf("%d sources", len(tr.Results))))
				for _, r := range tr.Results {
					fmt.Fprintf(out, "      %s\n", r.URL)
				}
			}
			if showContent {
				fmt.Fprintln(out)
				fmt.Fprintln(out, rec.TotalContent)
			}
			return nil
		},
	}
	showCmd.Flags().BoolVar(&showContent, "content", false, "Also print the cached page text")
	cmd.AddCommand(showCmd)

	return cmd
}
