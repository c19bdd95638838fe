package domain

import (
	"fmt"
	"time"
)

// ReportType is the closed set of analyses the backend can generate
type ReportType string

const (
	ReportTypeComprehensive ReportType = "comprehensive"
	ReportTypeSecurity      ReportType = "security"
	ReportTypePerformance   ReportType = "performance"
	ReportTypeCost          ReportType = "cost"
)

// ReportTypes lists every type in presentation order
var ReportTypes = []ReportType{
	ReportTypeComprehensive,
	ReportTypeSecurity,
	ReportTypePerformance,
	ReportTypeCost,
}

// SupportedStatsTypes are the types backed by a specialized analytics endpoint
var SupportedStatsTypes = []ReportType{
	ReportTypeSecurity,
	ReportTypePerformance,
	ReportTypeCost,
}

func (t ReportType) Valid() bool {
	for _, rt := range ReportTypes {
		if rt == t {
			return true
		}
	}
	return false
}

func ParseReportType(value string) (ReportType, error) {
	t := ReportType(value)
	if !t.Valid() {
		return "", fmt.Errorf("unknown report type %q", value)
	}
	return t, nil
}

// ReportTypeInfo describes a report type for selection screens
type ReportTypeInfo struct {
	Type          ReportType
	Label         string
	Description   string
	EstimatedTime string
	Sections      []string
}

var reportTypeInfo = map[ReportType]ReportTypeInfo{
	ReportTypeComprehensive: {
		Type:          ReportTypeComprehensive,
		Label:         "Comprehensive Analysis",
		Description:   "Full analysis across every advisor category",
		EstimatedTime: "3-5 minutes",
		Sections:      []string{"Executive summary", "Metrics by category", "Cost analysis", "Priority recommendations"},
	},
	ReportTypeSecurity: {
		Type:          ReportTypeSecurity,
		Label:         "Security Analysis",
		Description:   "Vulnerabilities and compliance gaps",
		EstimatedTime: "2-3 minutes",
		Sections:      []string{"Security score", "Critical issues", "Compliance gaps", "Priority recommendations"},
	},
	ReportTypePerformance: {
		Type:          ReportTypePerformance,
		Label:         "Performance Analysis",
		Description:   "Bottleneck detection and optimization opportunities",
		EstimatedTime: "2-3 minutes",
		Sections:      []string{"Performance score", "Critical optimizations", "Bottlenecks", "Improvement opportunities"},
	},
	ReportTypeCost: {
		Type:          ReportTypeCost,
		Label:         "Cost Analysis",
		Description:   "Savings potential and ROI",
		EstimatedTime: "2-3 minutes",
		Sections:      []string{"Estimated savings", "ROI analysis", "Cost opportunities", "Timeline"},
	},
}

func (t ReportType) Info() (ReportTypeInfo, bool) {
	info, ok := reportTypeInfo[t]
	return info, ok
}

// ReportConfiguration is the user's request for a report. It is copied into
// the Report on submission and never changed afterwards.
type ReportConfiguration struct {
	Title                  string
	Description            string
	Type                   ReportType
	FileID                 string
	IncludeGraphics        bool
	IncludeDetailedTables  bool
	IncludeRecommendations bool
}

// DefaultReportConfiguration enables every inclusion flag
func DefaultReportConfiguration() ReportConfiguration {
	return ReportConfiguration{
		Type:                   ReportTypeComprehensive,
		IncludeGraphics:        true,
		IncludeDetailedTables:  true,
		IncludeRecommendations: true,
	}
}

// Report is the client-side mirror of a server-side report
type Report struct {
	ID            string
	Configuration ReportConfiguration
	Status        ReportStatus
	ErrorMessage  string
	CreatedAt     time.Time
	GeneratedAt   *time.Time
	Analysis      map[string]any
}

// Apply merges a polled snapshot into r. Status only moves forward along the
// lifecycle; a snapshot that would move it backwards or carries a status
// outside the lifecycle keeps the current status and Apply reports false.
func (r *Report) Apply(next *Report) bool {
	if next == nil {
		return true
	}

	accepted := next.Status.Known() &&
		(r.Status == "" || r.Status == next.Status || r.Status.CanTransitionTo(next.Status))
	if accepted {
		r.Status = next.Status
	}
	if next.ErrorMessage != "" {
		r.ErrorMessage = next.ErrorMessage
	}
	if next.GeneratedAt != nil {
		r.GeneratedAt = next.GeneratedAt
	}
	if r.Configuration.Type == "" {
		r.Configuration = next.Configuration
	}
	if !next.CreatedAt.IsZero() && r.CreatedAt.IsZero() {
		r.CreatedAt = next.CreatedAt
	}
	if next.Analysis != nil {
		r.Analysis = next.Analysis
	}
	return accepted
}

// StatusProbe is the lightweight status view of a report
type StatusProbe struct {
	ID           string
	Status       ReportStatus
	Title        string
	Type         ReportType
	Progress     int
	ErrorMessage string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// RenderFormat selects the rendered representation of a completed report
type RenderFormat string

const (
	FormatHTML RenderFormat = "html"
	FormatPDF  RenderFormat = "pdf"
)

func ParseRenderFormat(value string) (RenderFormat, error) {
	switch RenderFormat(value) {
	case FormatHTML, FormatPDF:
		return RenderFormat(value), nil
	}
	return "", fmt.Errorf("unknown render format %q", value)
}

// Extension returns the file extension for the format including the dot
func (f RenderFormat) Extension() string {
	return "." + string(f)
}
