package report

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/de-tools/report-atlas/pkg/adapters"
	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/de-tools/report-atlas/pkg/services/validation"
	"github.com/de-tools/report-atlas/pkg/store/client"
	"github.com/de-tools/report-atlas/pkg/store/duckdb/tracking"
	"github.com/rs/zerolog"
)

type Transport interface {
	Do(ctx context.Context, method, path string, body, out any, opts ...client.RequestOption) error
	Fetch(ctx context.Context, path string, opts ...client.RequestOption) (*client.Blob, error)
}

type Controller interface {
	Submit(ctx context.Context, cfg domain.ReportConfiguration) (*domain.Report, error)
	Await(ctx context.Context, id string, opts AwaitOptions) (*domain.Report, error)
	Start(ctx context.Context, id string, opts AwaitOptions) (*Poller, error)
	Cancel(id string) error
	Get(ctx context.Context, id string) (*domain.Report, error)
	Status(ctx context.Context, id string) (*domain.StatusProbe, error)
	List(ctx context.Context) ([]*domain.Report, error)
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context, id string) error
	Render(ctx context.Context, id string, format domain.RenderFormat) (*client.Blob, error)
	Resume(ctx context.Context, opts AwaitOptions) ([]Outcome, error)
}

// Outcome is the resolution of one resumed report
type Outcome struct {
	ReportID string
	Report   *domain.Report
	Err      error
}

type Options struct {
	Gate     validation.Gate
	Store    tracking.Store
	Defaults AwaitOptions
}

type DefaultController struct {
	transport Transport
	gate      validation.Gate
	store     tracking.Store
	defaults  AwaitOptions

	mu      sync.Mutex
	pollers map[string]*Poller
}

func NewController(transport Transport, opts Options) *DefaultController {
	if opts.Gate == nil {
		opts.Gate = validation.NewGate()
	}

	return &DefaultController{
		transport: transport,
		gate:      opts.Gate,
		store:     opts.Store,
		defaults:  opts.Defaults.withDefaults(DefaultAwaitOptions()),
		pollers:   make(map[string]*Poller),
	}
}

// Submit validates cfg and asks the backend to generate the report. Nothing
// is sent when validation fails.
func (ctrl *DefaultController) Submit(ctx context.Context, cfg domain.ReportConfiguration) (*domain.Report, error) {
	logger := zerolog.Ctx(ctx)

	if err := ctrl.gate.Validate(cfg).Err(); err != nil {
		return nil, err
	}

	var out api.Report
	if err := ctrl.transport.Do(ctx, http.MethodPost, "/reports/", adapters.MapDomainConfigurationToAPI(cfg), &out); err != nil {
		return nil, fmt.Errorf("submit report: %w", err)
	}

	r := adapters.MapAPIReportToDomain(&out)
	r.Configuration = cfg
	r.Status = domain.ReportStatusPending
	r.ErrorMessage = ""

	if ctrl.store != nil {
		err := ctrl.store.Track(ctx, store.TrackedReport{
			ID:         r.ID,
			Title:      cfg.Title,
			ReportType: string(cfg.Type),
			Status:     string(r.Status),
			CreatedAt:  r.CreatedAt,
		})
		if err != nil {
			logger.Warn().Err(err).Str("report_id", r.ID).Msg("failed to track report")
		}
	}

	logger.Info().Str("report_id", r.ID).Str("type", string(cfg.Type)).Msg("report submitted")
	return r, nil
}

func (ctrl *DefaultController) Await(ctx context.Context, id string, opts AwaitOptions) (*domain.Report, error) {
	p, err := ctrl.Start(ctx, id, opts)
	if err != nil {
		return nil, err
	}
	return p.Result()
}

// Start launches the poll loop for id. Only one loop per id may be active.
func (ctrl *DefaultController) Start(ctx context.Context, id string, opts AwaitOptions) (*Poller, error) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if _, ok := ctrl.pollers[id]; ok {
		return nil, ErrAlreadyPolling
	}

	config := opts.withDefaults(ctrl.defaults)
	config.OnUpdate = ctrl.recorder(ctx, opts.OnUpdate)

	ctx, cancel := context.WithCancel(ctx)
	p := newPoller(id, ctrl.transport, config, ctrl.release)
	p.cancel = cancel
	ctrl.pollers[id] = p

	go func() {
		defer cancel()
		p.run(ctx)
	}()
	return p, nil
}

// Cancel stops the local poll loop for id. The backend keeps generating;
// use Delete to remove the report server-side.
func (ctrl *DefaultController) Cancel(id string) error {
	ctrl.mu.Lock()
	p, ok := ctrl.pollers[id]
	if ok {
		delete(ctrl.pollers, id)
	}
	ctrl.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotPolling, id)
	}
	p.Cancel()
	return nil
}

func (ctrl *DefaultController) release(p *Poller) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if ctrl.pollers[p.reportID] == p {
		delete(ctrl.pollers, p.reportID)
	}
}

// recorder mirrors status changes into the tracking store before handing the
// report to the caller's hook
func (ctrl *DefaultController) recorder(ctx context.Context, hook func(*domain.Report)) func(*domain.Report) {
	var last domain.ReportStatus
	return func(r *domain.Report) {
		if ctrl.store != nil && r.Status != last {
			var errMsg *string
			if r.ErrorMessage != "" {
				msg := r.ErrorMessage
				errMsg = &msg
			}
			if err := ctrl.store.UpdateStatus(ctx, r.ID, string(r.Status), errMsg); err != nil {
				zerolog.Ctx(ctx).Debug().Err(err).Str("report_id", r.ID).Msg("status not recorded")
			}
		}
		last = r.Status
		if hook != nil {
			hook(r)
		}
	}
}

func (ctrl *DefaultController) Get(ctx context.Context, id string) (*domain.Report, error) {
	var out api.Report
	if err := ctrl.transport.Do(ctx, http.MethodGet, reportPath(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}
	return adapters.MapAPIReportToDomain(&out), nil
}

func (ctrl *DefaultController) Status(ctx context.Context, id string) (*domain.StatusProbe, error) {
	var out api.ReportStatus
	if err := ctrl.transport.Do(ctx, http.MethodGet, reportPath(id)+"status/", nil, &out); err != nil {
		return nil, fmt.Errorf("get report status %s: %w", id, err)
	}
	return adapters.MapAPIStatusToDomain(&out), nil
}

func (ctrl *DefaultController) List(ctx context.Context) ([]*domain.Report, error) {
	var out api.ReportList
	if err := ctrl.transport.Do(ctx, http.MethodGet, "/reports/", nil, &out); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	reports := make([]*domain.Report, 0, len(out.Results))
	for i := range out.Results {
		reports = append(reports, adapters.MapAPIReportToDomain(&out.Results[i]))
	}
	return reports, nil
}

// Delete removes the report server-side and forgets it locally
func (ctrl *DefaultController) Delete(ctx context.Context, id string) error {
	if err := ctrl.transport.Do(ctx, http.MethodDelete, reportPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	return ctrl.Reset(ctx, id)
}

// Reset discards local state for id: the poll loop, if any, and the tracking record
func (ctrl *DefaultController) Reset(ctx context.Context, id string) error {
	_ = ctrl.Cancel(id)
	if ctrl.store == nil {
		return nil
	}
	return ctrl.store.Untrack(ctx, id)
}

func (ctrl *DefaultController) Render(ctx context.Context, id string, format domain.RenderFormat) (*client.Blob, error) {
	if _, err := domain.ParseRenderFormat(string(format)); err != nil {
		return nil, err
	}

	blob, err := ctrl.transport.Fetch(ctx, reportPath(id)+url.PathEscape(string(format))+"/")
	if err != nil {
		return nil, fmt.Errorf("render report %s as %s: %w", id, format, err)
	}
	return blob, nil
}

var resumableStatuses = []string{
	string(domain.ReportStatusDraft),
	string(domain.ReportStatusPending),
	string(domain.ReportStatusProcessing),
	string(domain.ReportStatusAnalyzing),
	string(domain.ReportStatusGenerating),
}

// Resume awaits every tracked report that has not reached a terminal state.
// Reports are polled concurrently, each by its own sequential loop.
func (ctrl *DefaultController) Resume(ctx context.Context, opts AwaitOptions) ([]Outcome, error) {
	if ctrl.store == nil {
		return nil, nil
	}

	tracked, err := ctrl.store.List(ctx, resumableStatuses)
	if err != nil {
		return nil, err
	}

	pollers := make([]*Poller, 0, len(tracked))
	outcomes := make([]Outcome, 0, len(tracked))
	for _, tr := range tracked {
		p, err := ctrl.Start(ctx, tr.ID, opts)
		if err != nil {
			outcomes = append(outcomes, Outcome{ReportID: tr.ID, Err: err})
			continue
		}
		pollers = append(pollers, p)
	}

	for _, p := range pollers {
		r, err := p.Result()
		outcomes = append(outcomes, Outcome{ReportID: p.ReportID(), Report: r, Err: err})
	}
	return outcomes, nil
}
