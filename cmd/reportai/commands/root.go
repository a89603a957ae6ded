// Package commands implements the reportai command tree.
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/edwinlov3tt/report-ai-sub000/cmd/reportai/ui"
	"github.com/edwinlov3tt/report-ai-sub000/internal/config"
	"github.com/edwinlov3tt/report-ai-sub000/internal/observability"
)

// globals holds the persistent flags and what PersistentPreRunE builds from
// them.
type globals struct {
	cfgFile string
	jsonOut bool
	verbose bool
	noColor bool
	cfg     *config.Config
	logger  *observability.Logger
	ui      *ui.UI
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "reportai",
		Short: "Report AI - campaign performance reports from the command line",
		Long: `reportai manages the report configuration store (products, tactic tables,
settings and versions) and runs campaign analyses against the configured
AI models without the HTTP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.cfgFile)
			if err != nil {
				return err
			}
			g.cfg = cfg

			level := "warn"
			if g.verbose {
				level = "debug"
			}
			format := "console"
			if g.jsonOut {
				format = "json"
			}
			g.logger = observability.NewLogger(observability.LogConfig{
				Level:       level,
				Format:      format,
				Output:      cmd.ErrOrStderr(),
				ServiceName: "reportai",
			})
			g.ui = ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), g.jsonOut, g.noColor)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&g.cfgFile, "config", "c", os.Getenv("CONFIG_PATH"), "config file path")
	root.PersistentFlags().BoolVar(&g.jsonOut, "json", false, "output JSON")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newMigrateCmd(g),
		newSchemaCmd(g),
		newVersionCmd(g),
		newModelsCmd(g),
		newMatchCmd(g),
		newAnalyzeCmd(g),
	)
	return root
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		ui.New(root.OutOrStdout(), root.ErrOrStderr(), false, false).Error("%v", err)
		return err
	}
	return nil
}
