package metrics

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/store/client"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Transport interface {
	Do(ctx context.Context, method, path string, body, out any, opts ...client.RequestOption) error
}

type Fetcher interface {
	FetchTypeStats(ctx context.Context, types []domain.ReportType) map[domain.ReportType]domain.DashboardMetrics
	FetchDashboardStats(ctx context.Context) (domain.DashboardMetrics, error)
}

type defaultFetcher struct {
	transport Transport
}

func NewFetcher(transport Transport) Fetcher {
	return &defaultFetcher{transport: transport}
}

// FetchTypeStats requests the specialized analytics of every type
// concurrently. A type whose request fails maps to nil; the others are
// unaffected.
func (f *defaultFetcher) FetchTypeStats(
	ctx context.Context,
	types []domain.ReportType,
) map[domain.ReportType]domain.DashboardMetrics {
	logger := zerolog.Ctx(ctx)

	var mu sync.Mutex
	out := make(map[domain.ReportType]domain.DashboardMetrics, len(types))

	// a plain group: one failure must not cancel the siblings
	var g errgroup.Group
	for _, t := range types {
		g.Go(func() error {
			stats, err := f.fetchType(ctx, t)
			if err != nil {
				logger.Warn().Err(err).Str("type", string(t)).Msg("failed to fetch type stats")
			}

			mu.Lock()
			out[t] = stats
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (f *defaultFetcher) fetchType(ctx context.Context, t domain.ReportType) (domain.DashboardMetrics, error) {
	if _, ok := statsSchemas[t]; !ok {
		return nil, fmt.Errorf("no specialized stats for report type %q", t)
	}

	var raw map[string]any
	path := "/analytics/specialized-stats/" + url.PathEscape(string(t)) + "/"
	if err := f.transport.Do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return NormalizeStats(raw, t), nil
}

func (f *defaultFetcher) FetchDashboardStats(ctx context.Context) (domain.DashboardMetrics, error) {
	var raw map[string]any
	if err := f.transport.Do(ctx, http.MethodGet, "/dashboard/stats/", nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch dashboard stats: %w", err)
	}
	return NormalizeDashboard(raw), nil
}
