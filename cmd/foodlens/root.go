package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"foodlens/internal/app"
	"foodlens/internal/common/config"
	"foodlens/internal/common/logger"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	link   = color.New(color.FgBlue, color.Underline).SprintFunc()
)

// CLI holds state shared by every subcommand for one invocation.
type CLI struct {
	configPath string
	verbose    bool

	app *app.App
}

func NewRootCommand() *cobra.Command {
	cli := &CLI{}

	rootCmd := &cobra.Command{
		Use:   "foodlens",
		Short: "Check packaged food against your health profile",
		Long: fmt.Sprintf(`%s

Photograph the front and back of a food package and get an analysis that takes
your allergies, diseases and other conditions into account.

%s
  foodlens keys set --openai sk-... --serpapi ...
  foodlens profile create --user-id jane@example.com --dob 1990-04-02 --gender Female \
      --weight 62 --height 168 --allergy peanut --disease "type 2 diabetes"
  foodlens analyze jane@example.com --front front.jpg --back back.jpg`,
			bold("foodlens"),
			bold("EXAMPLES:")),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "", "Path to a config file (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&cli.verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(newKeysCommand(cli))
	rootCmd.AddCommand(newProfileCommand(cli))
	rootCmd.AddCommand(newEnrichmentCommand(cli))
	rootCmd.AddCommand(newAnalyzeCommand(cli))
	rootCmd.AddCommand(newWorkersCommand())

	return rootCmd
}

// initialize loads configuration and builds the core for commands that need it.
func (cli *CLI) initialize(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if cli.configPath != "" {
		cfg, err = config.LoadFromFile(cli.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	level := "warn"
	if cli.verbose {
		level = "debug"
	}
	log := logger.NewZapAdapter(logger.New(level, cfg.Logging.Format, "stderr"))

	a, err := app.Build(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	cli.app = a
	return nil
}

func (cli *CLI) close() {
	if cli.app != nil {
		_ = cli.app.Close()
		cli.app = nil
	}
}

func printSuccess(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, green("✔ "+fmt.Sprintf(format, args...)))
}

func printWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, yellow("! "+fmt.Sprintf(format, args...)))
}
