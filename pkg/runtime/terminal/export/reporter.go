package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

type TableConfig struct {
	NameWidth  int
	ValueWidth int
	KindWidth  int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  32,
		ValueWidth: 20,
		KindWidth:  12,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type metricRow struct {
	Label string
	Value string
	Kind  domain.MetricKind
}

type metricsView struct {
	Title string
	Rows  []metricRow
}

func (c *Reporter) funcs() template.FuncMap {
	return template.FuncMap{
		"formatRow": func(name string, value string, kind string) string {
			return fmt.Sprintf("| %-*s | %*s | %-*s |",
				c.config.NameWidth, name,
				c.config.ValueWidth, value,
				c.config.KindWidth, kind)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2),
				strings.Repeat("-", c.config.KindWidth+2))
		},
		"date": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return "-"
			}
			return t.Format(time.RFC3339)
		},
	}
}

const metricsTemplate = `
=== {{.Title}} ===
{{separator}}
{{formatRow "Metric" "Value" "Kind"}}
{{separator}}
{{range .Rows}}{{formatRow .Label .Value (printf "%s" .Kind)}}
{{end}}{{separator}}
`

// HandleMetrics prints metrics as a table following the order of fields.
// A nil metrics map prints a single unavailable line.
func (c *Reporter) HandleMetrics(title string, fields []domain.MetricField, metrics domain.DashboardMetrics) error {
	if metrics == nil {
		_, err := fmt.Fprintf(c.writer, "\n=== %s ===\nunavailable\n", title)
		return err
	}

	view := metricsView{Title: title}
	for _, f := range fields {
		view.Rows = append(view.Rows, metricRow{
			Label: f.Label,
			Value: FormatValue(f.Kind, metrics[f.Name]),
			Kind:  f.Kind,
		})
	}

	t, err := template.New("metrics").Funcs(c.funcs()).Parse(metricsTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, view)
}

const reportTemplate = `
{{.Configuration.Title}} ({{.Configuration.Type}})
ID: {{.ID}}
Status: {{.Status}}{{if .ErrorMessage}}
Error: {{.ErrorMessage}}{{end}}
Created: {{date .CreatedAtPtr}}
Generated: {{date .GeneratedAt}}
`

type reportView struct {
	*domain.Report
	CreatedAtPtr *time.Time
}

func (c *Reporter) HandleReport(report *domain.Report) error {
	t, err := template.New("report").Funcs(c.funcs()).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, reportView{Report: report, CreatedAtPtr: &report.CreatedAt})
}

// FormatValue renders a metric value for display
func FormatValue(kind domain.MetricKind, value any) string {
	if kind == domain.MetricLabel {
		s, _ := value.(string)
		if s == "" {
			return "-"
		}
		return s
	}

	n, ok := value.(float64)
	if !ok {
		return "-"
	}
	switch kind {
	case domain.MetricCurrency:
		return fmt.Sprintf("$%.2f", n)
	case domain.MetricPercentage:
		return fmt.Sprintf("%.1f%%", n)
	case domain.MetricHours:
		return fmt.Sprintf("%.1f h", n)
	}
	if n == math.Trunc(n) {
		return fmt.Sprintf("%.0f", n)
	}
	return fmt.Sprintf("%.2f", n)
}
