package domain

// MetricKind tells presenters how to format a metric value
type MetricKind string

const (
	MetricNumber     MetricKind = "number"
	MetricPercentage MetricKind = "percentage"
	MetricCurrency   MetricKind = "currency"
	MetricHours      MetricKind = "hours"
	MetricLabel      MetricKind = "label"
)

// DashboardMetrics maps a metric name to a float64 or a string label
type DashboardMetrics map[string]any

func (m DashboardMetrics) Float(name string) float64 {
	v, _ := m[name].(float64)
	return v
}

func (m DashboardMetrics) String(name string) string {
	v, _ := m[name].(string)
	return v
}

// MetricField describes one normalized field
type MetricField struct {
	Name  string
	Label string
	Kind  MetricKind
}
