package report

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/de-tools/report-atlas/pkg/adapters"
	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultInitialDelay = 3 * time.Second
	DefaultMaxAttempts  = 60

	// NoInitialDelay issues the first poll immediately
	NoInitialDelay time.Duration = -1
)

// AwaitOptions bounds a poll loop. Zero values take the defaults; set
// InitialDelay to NoInitialDelay to skip the wait before the first poll.
type AwaitOptions struct {
	// OnUpdate runs on the polling goroutine after every successful poll
	OnUpdate     func(report *domain.Report)
	PollInterval time.Duration
	InitialDelay time.Duration
	MaxAttempts  int
}

func DefaultAwaitOptions() AwaitOptions {
	return AwaitOptions{
		PollInterval: DefaultPollInterval,
		InitialDelay: DefaultInitialDelay,
		MaxAttempts:  DefaultMaxAttempts,
	}
}

func (o AwaitOptions) withDefaults(defaults AwaitOptions) AwaitOptions {
	if o.PollInterval <= 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.InitialDelay == 0 {
		o.InitialDelay = defaults.InitialDelay
	}
	if o.InitialDelay < 0 {
		o.InitialDelay = 0
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaults.MaxAttempts
	}
	return o
}

// Poller drives one report towards a terminal state. Polls are strictly
// sequential and the loop resolves exactly once.
type Poller struct {
	reportID  string
	transport Transport
	config    AwaitOptions
	cancel    context.CancelFunc
	cancelled atomic.Bool
	attempts  atomic.Int32
	done      chan struct{}
	onExit    func(p *Poller)

	result *domain.Report
	err    error
}

func newPoller(reportID string, transport Transport, config AwaitOptions, onExit func(p *Poller)) *Poller {
	if onExit == nil {
		onExit = func(*Poller) {}
	}
	return &Poller{
		reportID:  reportID,
		transport: transport,
		config:    config,
		done:      make(chan struct{}),
		onExit:    onExit,
	}
}

func (p *Poller) ReportID() string {
	return p.reportID
}

func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// Result is valid once Done is closed
func (p *Poller) Result() (*domain.Report, error) {
	<-p.done
	return p.result, p.err
}

// Attempts returns the number of polls that completed so far
func (p *Poller) Attempts() int {
	return int(p.attempts.Load())
}

// Cancel stops the loop. No poll is issued afterwards and the result of an
// in-flight poll is discarded.
func (p *Poller) Cancel() {
	p.cancelled.Store(true)
	if p.cancel != nil {
		p.cancel()
	}
}

// Wait blocks until the loop resolves or ctx is done
func (p *Poller) Wait(ctx context.Context) (*domain.Report, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Poller) run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("report_id", p.reportID).Logger()
	defer close(p.done)
	defer p.onExit(p)

	current := &domain.Report{ID: p.reportID}

	if p.config.InitialDelay > 0 && !p.sleep(ctx, p.config.InitialDelay) {
		p.err = p.stopReason(ctx)
		return
	}

	for attempt := 1; ; attempt++ {
		next, err := p.fetch(ctx)
		if ctx.Err() != nil {
			p.err = p.stopReason(ctx)
			return
		}
		if err != nil {
			logger.Warn().Err(err).Int("attempt", attempt).Msg("poll failed")
			p.err = err
			return
		}
		p.attempts.Store(int32(attempt))

		previous := current.Status
		if !current.Apply(next) {
			msg := "ignoring status regression"
			if !next.Status.Known() {
				msg = "ignoring unknown status"
			}
			logger.Warn().
				Str("current", string(previous)).
				Str("received", string(next.Status)).
				Msg(msg)
		}
		logger.Debug().Int("attempt", attempt).Str("status", string(current.Status)).Msg("polled report")

		if p.config.OnUpdate != nil {
			snapshot := *current
			p.config.OnUpdate(&snapshot)
		}
		if ctx.Err() != nil {
			p.err = p.stopReason(ctx)
			return
		}

		switch current.Status {
		case domain.ReportStatusCompleted:
			p.result = current
			return
		case domain.ReportStatusFailed:
			p.result = current
			p.err = &GenerationFailedError{ReportID: p.reportID, Message: current.ErrorMessage}
			return
		case domain.ReportStatusCancelled:
			p.result = current
			p.err = ErrCancelled
			return
		}

		if attempt >= p.config.MaxAttempts {
			p.result = current
			p.err = &PollingTimeoutError{ReportID: p.reportID, Attempts: attempt}
			return
		}

		if !p.sleep(ctx, p.config.PollInterval) {
			p.err = p.stopReason(ctx)
			return
		}
	}
}

func (p *Poller) fetch(ctx context.Context) (*domain.Report, error) {
	var out api.Report
	if err := p.transport.Do(ctx, http.MethodGet, reportPath(p.reportID), nil, &out); err != nil {
		return nil, fmt.Errorf("poll report %s: %w", p.reportID, err)
	}
	return adapters.MapAPIReportToDomain(&out), nil
}

func (p *Poller) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (p *Poller) stopReason(ctx context.Context) error {
	if p.cancelled.Load() {
		return ErrCancelled
	}
	return fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
}

func reportPath(id string) string {
	return "/reports/" + url.PathEscape(id) + "/"
}
