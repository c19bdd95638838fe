package commands

import (
	"fmt"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/spf13/cobra"
)

type DownloadCmd struct {
	deps   *Deps
	format string
}

func NewDownloadCmd(deps *Deps) *cobra.Command {
	dc := &DownloadCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "download <report-id>",
		Short: "Export the rendered report to the configured sink",
		Args:  cobra.ExactArgs(1),
		RunE:  dc.run,
	}

	cmd.Flags().StringVar(&dc.format, "format", string(domain.FormatHTML), "Rendered format (html or pdf)")
	return cmd
}

func (dc *DownloadCmd) run(cmd *cobra.Command, args []string) error {
	format, err := domain.ParseRenderFormat(dc.format)
	if err != nil {
		return err
	}
	return exportReport(cmd, dc.deps, args[0], format)
}

func exportReport(cmd *cobra.Command, deps *Deps, id string, format domain.RenderFormat) error {
	ctx := cmd.Context()

	blob, err := deps.Reports.Render(ctx, id, format)
	if err != nil {
		return err
	}

	location, err := deps.Sink.Store(ctx, "report-"+id+format.Extension(), blob.ContentType, blob.Data)
	if err != nil {
		return fmt.Errorf("failed to export report %s via %s: %w", id, deps.Sink.Name(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", location)
	return nil
}
