package adapters

import (
	"testing"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapAPIReportToDomain(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	completed := created.Add(3 * time.Minute)

	tests := []struct {
		name     string
		input    *api.Report
		expected *domain.Report
	}{
		{
			name:     "nil",
			input:    nil,
			expected: nil,
		},
		{
			name: "error alias and legacy payload key",
			input: &api.Report{
				ID:              "r1",
				Title:           "Q1",
				ReportType:      "security",
				Status:          "error",
				ErrorMessage:    "no rows",
				CreatedAt:       created,
				CompletedAt:     &completed,
				AnalysisResults: map[string]any{"security_analysis": map[string]any{}},
			},
			expected: &domain.Report{
				ID:            "r1",
				Configuration: domain.ReportConfiguration{Title: "Q1", Type: domain.ReportTypeSecurity},
				Status:        domain.ReportStatusFailed,
				ErrorMessage:  "no rows",
				CreatedAt:     created,
				GeneratedAt:   &completed,
				Analysis:      map[string]any{"security_analysis": map[string]any{}},
			},
		},
		{
			name:  "missing status means pending",
			input: &api.Report{ID: "r2", ReportType: "cost"},
			expected: &domain.Report{
				ID:            "r2",
				Configuration: domain.ReportConfiguration{Type: domain.ReportTypeCost},
				Status:        domain.ReportStatusPending,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MapAPIReportToDomain(tc.input))
		})
	}
}

func TestMapDomainConfigurationToAPI(t *testing.T) {
	cfg := domain.ReportConfiguration{
		Title:                  "Monthly",
		Type:                   domain.ReportTypePerformance,
		FileID:                 "f-1",
		IncludeGraphics:        true,
		IncludeRecommendations: true,
	}

	req := MapDomainConfigurationToAPI(cfg)
	require.Equal(t, "performance", req.ReportType)
	assert.Equal(t, "f-1", req.CSVFileID)
	assert.True(t, req.Configuration.IncludeGraphics)
	assert.False(t, req.Configuration.IncludeDetailedTables)
	assert.True(t, req.Configuration.IncludeRecommendations)
}
