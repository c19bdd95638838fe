package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReports struct {
	mock.Mock
}

func (m *mockReports) Get(ctx context.Context, id string) (*domain.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchTypeStats(ctx context.Context, types []domain.ReportType) map[domain.ReportType]domain.DashboardMetrics {
	args := m.Called(ctx, types)
	return args.Get(0).(map[domain.ReportType]domain.DashboardMetrics)
}

func (m *mockFetcher) FetchDashboardStats(ctx context.Context) (domain.DashboardMetrics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.DashboardMetrics), args.Error(1)
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	mockRep := new(mockReports)
	mockFet := new(mockFetcher)

	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Reports: mockRep,
			Metrics: mockFet,
			Logger:  logger,
		},
	}
	router := ConfigureRouter(config)
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setupMocks     func()
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:           "ValidateReport",
			method:         http.MethodPost,
			path:           "/api/v1/reports/validate",
			body:           `{"title": "Quarterly review", "report_type": "security", "file_id": "f-1"}`,
			setupMocks:     func() {},
			expectedStatus: http.StatusOK,
			expected:       api.ValidationResult{IsValid: true, Errors: []string{}},
			parseResponse:  unmarshalResponse[api.ValidationResult](),
		},
		{
			name:   "GetReportMetrics",
			method: http.MethodGet,
			path:   "/api/v1/reports/r1/metrics",
			setupMocks: func() {
				mockRep.On("Get", mock.Anything, "r1").Return(&domain.Report{
					ID:            "r1",
					Configuration: domain.ReportConfiguration{Type: domain.ReportTypeComprehensive},
					Analysis: map[string]any{
						"totals":            map[string]any{"total_actions": 40.0},
						"dashboard_metrics": map[string]any{"advisor_score": 72.0},
					},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expected: api.Metrics{
				ReportID:   "r1",
				ReportType: "comprehensive",
				Metrics: map[string]any{
					"total_actions":       40.0,
					"advisor_score":       72.0,
					"monthly_savings":     0.0,
					"working_hours":       0.0,
					"high_impact_actions": 0.0,
				},
			},
			parseResponse: unmarshalResponse[api.Metrics](),
		},
		{
			name:   "GetTypeStats",
			method: http.MethodGet,
			path:   "/api/v1/stats?types=performance",
			setupMocks: func() {
				mockFet.On("FetchTypeStats", mock.Anything, []domain.ReportType{domain.ReportTypePerformance}).
					Return(map[domain.ReportType]domain.DashboardMetrics{
						domain.ReportTypePerformance: {"total_reports": 2.0},
					})
			},
			expectedStatus: http.StatusOK,
			expected: api.TypeStats{Stats: map[string]map[string]any{
				"performance": {"total_reports": 2.0},
			}},
			parseResponse: unmarshalResponse[api.TypeStats](),
		},
		{
			name:           "GetTypeStats_UnknownType",
			method:         http.MethodGet,
			path:           "/api/v1/stats?types=billing",
			setupMocks:     func() {},
			expectedStatus: http.StatusBadRequest,
			expected:       api.Error{Error: `unknown report type "billing"`},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name:           "UnknownRoute",
			method:         http.MethodGet,
			path:           "/api/v1/workspaces",
			setupMocks:     func() {},
			expectedStatus: http.StatusNotFound,
			expected:       "404 page not found\n",
			parseResponse: func(data []byte) (interface{}, error) {
				return string(data), nil
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()
			req, err := http.NewRequest(tc.method, testServer.URL+tc.path, strings.NewReader(tc.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(body)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestWebAPI_ReportTypes(t *testing.T) {
	router := ConfigureRouter(Config{Dependencies: Dependencies{Logger: zerolog.Nop()}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/report-types", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got []api.ReportTypeInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 4)
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}
