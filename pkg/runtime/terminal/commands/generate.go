package commands

import (
	"fmt"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/metrics"
	"github.com/spf13/cobra"
)

// GenerateCmd runs the whole workflow: upload, submit, await and show metrics
type GenerateCmd struct {
	deps     *Deps
	config   configFlags
	download string
}

func NewGenerateCmd(deps *Deps) *cobra.Command {
	gc := &GenerateCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "generate <path>",
		Short: "Upload a file and generate a report from it",
		Args:  cobra.ExactArgs(1),
		RunE:  gc.run,
	}

	gc.config.bind(cmd, false)
	cmd.Flags().StringVar(&gc.download, "download", "", "Export the rendered report when done (html or pdf)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func (gc *GenerateCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var format domain.RenderFormat
	if gc.download != "" {
		f, err := domain.ParseRenderFormat(gc.download)
		if err != nil {
			return err
		}
		format = f
	}

	// the local file stands in for the upload until it has an id
	cfg := gc.config.configuration()
	precheck := cfg
	precheck.FileID = args[0]
	if err := validateConfig(cmd, precheck); err != nil {
		return err
	}

	file, err := uploadFile(cmd, gc.deps, args[0], true)
	if err != nil {
		return err
	}
	cfg.FileID = file.ID

	submitted, err := gc.deps.Reports.Submit(ctx, cfg)
	if err != nil {
		return err
	}
	cmd.PrintErrf("report %s submitted\n", submitted.ID)

	opts := gc.deps.Polling
	opts.OnUpdate = progressPrinter(cmd)
	r, err := gc.deps.Reports.Await(ctx, submitted.ID, opts)
	if err != nil {
		return fmt.Errorf("report %s: %w", submitted.ID, err)
	}

	if err := gc.deps.Reporter.HandleReport(r); err != nil {
		return err
	}
	if err := gc.deps.Reporter.HandleMetrics("Metrics", metrics.Fields(cfg.Type), metrics.Normalize(r.Analysis, cfg.Type)); err != nil {
		return err
	}

	if format == "" {
		return nil
	}
	return exportReport(cmd, gc.deps, r.ID, format)
}
