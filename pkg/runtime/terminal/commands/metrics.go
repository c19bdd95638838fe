package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/metrics"
	"github.com/spf13/cobra"
)

type MetricsCmd struct {
	deps *Deps
}

func NewMetricsCmd(deps *Deps) *cobra.Command {
	mc := &MetricsCmd{deps: deps}
	return &cobra.Command{
		Use:   "metrics <report-id>",
		Short: "Show the dashboard metrics of a report",
		Args:  cobra.ExactArgs(1),
		RunE:  mc.run,
	}
}

func (mc *MetricsCmd) run(cmd *cobra.Command, args []string) error {
	r, err := mc.deps.Reports.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if r.Status != domain.ReportStatusCompleted {
		cmd.PrintErrf("report %s is %s, metrics may be incomplete\n", r.ID, r.Status)
	}

	t := r.Configuration.Type
	title := string(t)
	if info, ok := t.Info(); ok {
		title = info.Label
	}
	return mc.deps.Reporter.HandleMetrics(title, metrics.Fields(t), metrics.Normalize(r.Analysis, t))
}

type StatsCmd struct {
	deps      *Deps
	types     []string
	dashboard bool
}

func NewStatsCmd(deps *Deps) *cobra.Command {
	sc := &StatsCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate statistics per report type",
		RunE:  sc.run,
	}

	defaults := make([]string, 0, len(domain.SupportedStatsTypes))
	for _, t := range domain.SupportedStatsTypes {
		defaults = append(defaults, string(t))
	}
	cmd.Flags().StringSliceVar(&sc.types, "types", defaults, "Report types to fetch statistics for")
	cmd.Flags().BoolVar(&sc.dashboard, "dashboard", false, "Also show the overall dashboard figures")

	return cmd
}

func (sc *StatsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	types := make([]domain.ReportType, 0, len(sc.types))
	for _, raw := range sc.types {
		t, err := domain.ParseReportType(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		types = append(types, t)
	}

	if sc.dashboard {
		stats, err := sc.deps.Metrics.FetchDashboardStats(ctx)
		if err != nil {
			return err
		}
		if err := sc.deps.Reporter.HandleMetrics("Dashboard", metrics.DashboardFields(), stats); err != nil {
			return err
		}
	}

	stats := sc.deps.Metrics.FetchTypeStats(ctx, types)
	for _, t := range types {
		if err := sc.deps.Reporter.HandleMetrics(string(t), metrics.StatsFields(t), stats[t]); err != nil {
			return err
		}
	}
	return nil
}

type TypesCmd struct{}

func NewTypesCmd() *cobra.Command {
	tc := &TypesCmd{}
	return &cobra.Command{
		Use:   "types",
		Short: "List the supported report types",
		RunE:  tc.run,
	}
}

func (tc *TypesCmd) run(cmd *cobra.Command, _ []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tLABEL\tESTIMATED TIME\tSECTIONS")
	for _, t := range domain.ReportTypes {
		info, _ := t.Info()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t, info.Label, info.EstimatedTime, strings.Join(info.Sections, ", "))
	}
	return w.Flush()
}
