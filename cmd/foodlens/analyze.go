package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"foodlens/internal/analysis"
	"foodlens/internal/formatter"
)

func newAnalyzeCommand(cli *CLI) *cobra.Command {
	var front, back string
	var email bool

	cmd := &cobra.Command{
		Use:   "analyze <user-id>",
		Short: "Analyze a food package for a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frontURI, err := readImage(front)
			if err != nil {
				return fmt.Errorf("--front: %w", err)
			}
			backURI, err := readImage(back)
			if err != nil {
				return fmt.Errorf("--back: %w", err)
			}

			if err := cli.initialize(cmd); err != nil {
				return err
			}
			defer cli.close()

			if email && cli.app.Mailer == nil {
				return fmt.Errorf("--email needs notifications.ses.enabled in the configuration")
			}

			ctl := cli.app.NewController()
			if _, err := ctl.LoadProfile(cmd.Context(), args[0]); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, gray("analysing..."))
			res, err := ctl.Analyze(cmd.Context(), frontURI, backURI)
			if err != nil {
				return err
			}
			printResult(out, res)

			if email {
				body := formatter.RenderReport(res.FoodName, res.FoodIngredients, res.HealthAnalysis)
				subject := fmt.Sprintf("Food analysis: %s", strings.TrimSpace(res.FoodName))
				if _, err := cli.app.Mailer.SendReport(cmd.Context(), args[0], subject, body); err != nil {
					return err
				}
				printSuccess(out, "report sent to %s", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&front, "front", "", "Photo of the package front")
	cmd.Flags().StringVar(&back, "back", "", "Photo of the ingredients and nutrition label")
	cmd.Flags().BoolVar(&email, "email", false, "Email the report to the user id")
	_ = cmd.MarkFlagRequired("front")
	_ = cmd.MarkFlagRequired("back")

	return cmd
}

func readImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%s is empty", path)
	}
	return analysis.ImageDataURI(data), nil
}

func printResult(w io.Writer, res *analysis.Result) {
	fmt.Fprintf(w, "\n%s\n%s\n", bold("Product"), strings.TrimSpace(res.FoodName))
	fmt.Fprintf(w, "\n%s\n%s\n\n", bold("Ingredients"), strings.TrimSpace(res.FoodIngredients))

	for _, s := range formatter.ParseSections(res.HealthAnalysis) {
		fmt.Fprintln(w, cyan(s.Title))
		for _, item := range s.Content {
			fmt.Fprintf(w, "  • %s\n", linkify(item))
		}
		fmt.Fprintln(w)
	}

	if urls := formatter.ExtractURLs(res.HealthAnalysis); len(urls) > 0 {
		fmt.Fprintln(w, bold("Sources"))
		for _, u := range urls {
			fmt.Fprintf(w, "  %s\n", u)
		}
	}
}

// linkify highlights every URL in text and leaves the rest as is.
func linkify(text string) string {
	spans, trailing := formatter.ExtractLinks(text)
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Preceding)
		b.WriteString(link(s.URL))
	}
	b.WriteString(trailing)
	return b.String()
}
