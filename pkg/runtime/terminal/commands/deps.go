package commands

import (
	"context"
	"sync"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/runtime/terminal/export"
	sinks "github.com/de-tools/report-atlas/pkg/services/export"
	"github.com/de-tools/report-atlas/pkg/services/metrics"
	"github.com/de-tools/report-atlas/pkg/services/report"
	"github.com/spf13/cobra"
)

type Uploader interface {
	Upload(ctx context.Context, file domain.FileHandle, onProgress func(percent float64)) (*domain.UploadedFile, error)
	WaitReady(ctx context.Context, id string, interval time.Duration, maxAttempts int) (*domain.UploadedFile, error)
}

// Deps are the services shared by every command
type Deps struct {
	Reports  report.Controller
	Uploads  Uploader
	Metrics  metrics.Fetcher
	Sink     sinks.Sink
	Reporter *export.Reporter
	Polling  report.AwaitOptions
}

type configFlags struct {
	title             string
	description       string
	reportType        string
	fileID            string
	noGraphics        bool
	noTables          bool
	noRecommendations bool
}

func (f *configFlags) bind(cmd *cobra.Command, withFile bool) {
	cmd.Flags().StringVar(&f.title, "title", "", "Report title")
	cmd.Flags().StringVar(&f.description, "description", "", "Report description")
	cmd.Flags().StringVar(&f.reportType, "type", string(domain.ReportTypeComprehensive),
		"Report type (comprehensive, security, performance, cost)")
	if withFile {
		cmd.Flags().StringVar(&f.fileID, "file", "", "ID of an uploaded file")
	}
	cmd.Flags().BoolVar(&f.noGraphics, "no-graphics", false, "Exclude graphics")
	cmd.Flags().BoolVar(&f.noTables, "no-tables", false, "Exclude detailed tables")
	cmd.Flags().BoolVar(&f.noRecommendations, "no-recommendations", false, "Exclude recommendations")
}

func (f *configFlags) configuration() domain.ReportConfiguration {
	cfg := domain.DefaultReportConfiguration()
	cfg.Title = f.title
	cfg.Description = f.description
	cfg.Type = domain.ReportType(f.reportType)
	cfg.FileID = f.fileID
	cfg.IncludeGraphics = !f.noGraphics
	cfg.IncludeDetailedTables = !f.noTables
	cfg.IncludeRecommendations = !f.noRecommendations
	return cfg
}

// progressPrinter writes one line per status change to the command's stderr.
// It is shared by concurrent poll loops.
func progressPrinter(cmd *cobra.Command) func(r *domain.Report) {
	var mu sync.Mutex
	last := make(map[string]domain.ReportStatus)
	return func(r *domain.Report) {
		mu.Lock()
		defer mu.Unlock()

		if last[r.ID] == r.Status {
			return
		}
		last[r.ID] = r.Status
		cmd.PrintErrf("report %s: %s\n", r.ID, r.Status)
	}
}
