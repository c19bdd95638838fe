package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/report-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/report-atlas/pkg/runtime/terminal/export"
	sinks "github.com/de-tools/report-atlas/pkg/services/export"
	"github.com/de-tools/report-atlas/pkg/services/metrics"
	"github.com/de-tools/report-atlas/pkg/services/report"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	deps    *commands.Deps
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Reports report.Controller
	Uploads commands.Uploader
	Metrics metrics.Fetcher
	Sink    sinks.Sink
	Polling report.AwaitOptions
	Output  io.Writer
	Errors  io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Errors == nil {
		opts.Errors = os.Stderr
	}

	cli := &CLI{
		deps: &commands.Deps{
			Reports:  opts.Reports,
			Uploads:  opts.Uploads,
			Metrics:  opts.Metrics,
			Sink:     opts.Sink,
			Reporter: export.NewReporter(opts.Output),
			Polling:  opts.Polling,
		},
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	cli.rootCmd.SetErr(opts.Errors)
	return cli
}

func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, mainly for tests
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reports",
		Short:         "Advisor report generation client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(commands.NewUploadCmd(cli.deps))
	cmd.AddCommand(commands.NewValidateCmd())
	cmd.AddCommand(commands.NewSubmitCmd(cli.deps))
	cmd.AddCommand(commands.NewAwaitCmd(cli.deps))
	cmd.AddCommand(commands.NewGenerateCmd(cli.deps))
	cmd.AddCommand(commands.NewStatusCmd(cli.deps))
	cmd.AddCommand(commands.NewListCmd(cli.deps))
	cmd.AddCommand(commands.NewMetricsCmd(cli.deps))
	cmd.AddCommand(commands.NewStatsCmd(cli.deps))
	cmd.AddCommand(commands.NewDownloadCmd(cli.deps))
	cmd.AddCommand(commands.NewDeleteCmd(cli.deps))
	cmd.AddCommand(commands.NewResumeCmd(cli.deps))
	cmd.AddCommand(commands.NewTypesCmd())

	return cmd
}
