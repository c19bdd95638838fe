package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/validation"
	"github.com/spf13/cobra"
)

func validateConfig(cmd *cobra.Command, cfg domain.ReportConfiguration) error {
	result := validation.Validate(cfg)
	for _, msg := range result.Errors {
		cmd.PrintErrf("  - %s\n", msg)
	}
	return result.Err()
}

type ValidateCmd struct {
	config configFlags
}

func NewValidateCmd() *cobra.Command {
	vc := &ValidateCmd{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a report configuration without submitting it",
		RunE:  vc.run,
	}

	vc.config.bind(cmd, true)
	return cmd
}

func (vc *ValidateCmd) run(cmd *cobra.Command, _ []string) error {
	if err := validateConfig(cmd, vc.config.configuration()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
	return nil
}

type SubmitCmd struct {
	deps   *Deps
	config configFlags
	await  bool
}

func NewSubmitCmd(deps *Deps) *cobra.Command {
	sc := &SubmitCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a report for an uploaded file",
		RunE:  sc.run,
	}

	sc.config.bind(cmd, true)
	cmd.Flags().BoolVar(&sc.await, "await", false, "Wait for the report to finish")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (sc *SubmitCmd) run(cmd *cobra.Command, _ []string) error {
	cfg := sc.config.configuration()
	if err := validateConfig(cmd, cfg); err != nil {
		return err
	}

	r, err := sc.deps.Reports.Submit(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.ID, r.Status)

	if !sc.await {
		return nil
	}
	return awaitReport(cmd, sc.deps, r.ID)
}

type AwaitCmd struct {
	deps *Deps
}

func NewAwaitCmd(deps *Deps) *cobra.Command {
	ac := &AwaitCmd{deps: deps}
	return &cobra.Command{
		Use:   "await <report-id>",
		Short: "Poll a report until it completes, fails or the attempts run out",
		Args:  cobra.ExactArgs(1),
		RunE:  ac.run,
	}
}

func (ac *AwaitCmd) run(cmd *cobra.Command, args []string) error {
	return awaitReport(cmd, ac.deps, args[0])
}

func awaitReport(cmd *cobra.Command, deps *Deps, id string) error {
	opts := deps.Polling
	opts.OnUpdate = progressPrinter(cmd)

	r, err := deps.Reports.Await(cmd.Context(), id, opts)
	if r != nil {
		if herr := deps.Reporter.HandleReport(r); herr != nil {
			return herr
		}
	}
	return err
}

type StatusCmd struct {
	deps *Deps
}

func NewStatusCmd(deps *Deps) *cobra.Command {
	sc := &StatusCmd{deps: deps}
	return &cobra.Command{
		Use:   "status <report-id>",
		Short: "Show the current status of a report",
		Args:  cobra.ExactArgs(1),
		RunE:  sc.run,
	}
}

func (sc *StatusCmd) run(cmd *cobra.Command, args []string) error {
	probe, err := sc.deps.Reports.Status(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\t%s\t%d%%\n", probe.ID, probe.Status, probe.Progress)
	if probe.ErrorMessage != "" {
		fmt.Fprintf(out, "error: %s\n", probe.ErrorMessage)
	}
	return nil
}

type ListCmd struct {
	deps *Deps
}

func NewListCmd(deps *Deps) *cobra.Command {
	lc := &ListCmd{deps: deps}
	return &cobra.Command{
		Use:   "list",
		Short: "List reports known to the backend",
		RunE:  lc.run,
	}
}

func (lc *ListCmd) run(cmd *cobra.Command, _ []string) error {
	reports, err := lc.deps.Reports.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No reports found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tTITLE")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Configuration.Type, r.Status, r.Configuration.Title)
	}
	return w.Flush()
}

type DeleteCmd struct {
	deps *Deps
}

func NewDeleteCmd(deps *Deps) *cobra.Command {
	dc := &DeleteCmd{deps: deps}
	return &cobra.Command{
		Use:   "delete <report-id>",
		Short: "Delete a report on the backend and forget it locally",
		Args:  cobra.ExactArgs(1),
		RunE:  dc.run,
	}
}

func (dc *DeleteCmd) run(cmd *cobra.Command, args []string) error {
	if err := dc.deps.Reports.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}

type ResumeCmd struct {
	deps *Deps
}

func NewResumeCmd(deps *Deps) *cobra.Command {
	rc := &ResumeCmd{deps: deps}
	return &cobra.Command{
		Use:   "resume",
		Short: "Await every tracked report that has not finished yet",
		RunE:  rc.run,
	}
}

func (rc *ResumeCmd) run(cmd *cobra.Command, _ []string) error {
	opts := rc.deps.Polling
	opts.OnUpdate = progressPrinter(cmd)

	outcomes, err := rc.deps.Reports.Resume(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No pending reports")
		return nil
	}

	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\terror\t%v\n", o.ReportID, o.Err)
			errs = append(errs, o.Err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", o.ReportID, o.Report.Status)
	}
	return errors.Join(errs...)
}
