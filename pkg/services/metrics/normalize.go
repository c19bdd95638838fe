package metrics

import (
	"math"
	"strings"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/spf13/cast"
)

// Normalize derives the dashboard metrics of a report from its raw analysis
// payload. raw may be the whole analysis results, in which case the
// "<type>_analysis" object is used, or that object itself. Missing or
// malformed values take the field default. An unknown type yields empty
// metrics.
func Normalize(raw map[string]any, t domain.ReportType) domain.DashboardMetrics {
	s, ok := analysisSchemas[t]
	if !ok {
		return domain.DashboardMetrics{}
	}
	return s.apply(analysisRoot(raw, t))
}

// NormalizeStats derives the aggregate metrics of a type from a specialized
// analytics payload
func NormalizeStats(raw map[string]any, t domain.ReportType) domain.DashboardMetrics {
	s, ok := statsSchemas[t]
	if !ok {
		return domain.DashboardMetrics{}
	}
	return s.apply(raw)
}

func NormalizeDashboard(raw map[string]any) domain.DashboardMetrics {
	return dashboardSchema.apply(raw)
}

func analysisRoot(raw map[string]any, t domain.ReportType) map[string]any {
	if nested, ok := raw[string(t)+"_analysis"].(map[string]any); ok {
		return nested
	}
	return raw
}

func (s schema) apply(root map[string]any) domain.DashboardMetrics {
	out := make(domain.DashboardMetrics, len(s))
	for _, f := range s {
		out[f.Name] = f.resolve(root)
	}
	return out
}

func (f field) resolve(root map[string]any) any {
	for _, path := range f.Paths {
		v, ok := lookup(root, path)
		if !ok {
			continue
		}
		if f.Kind == domain.MetricLabel {
			if s, ok := toLabel(v); ok {
				return s
			}
			continue
		}
		if n, ok := toNumber(v); ok {
			return n
		}
	}
	return f.Default
}

func lookup(root map[string]any, path string) (any, bool) {
	var current any = root
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

// toNumber accepts JSON numbers in any Go numeric form and numeric strings
func toNumber(v any) (float64, bool) {
	switch v := v.(type) {
	case bool, map[string]any, []any:
		return 0, false
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, false
		}
		n, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		return finite(n)
	}

	n, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return finite(n)
}

func finite(n float64) (float64, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func toLabel(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
