package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/store/client"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) Get(ctx context.Context, id string) (*domain.Report, error) {
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

func setupRouter(reader *mockReader, fetcher *mockFetcher) http.Handler {
	h := NewHandler(reader, fetcher, nil)
	r := chi.NewRouter()
	r.Get("/report-types", h.ListReportTypes)
	r.Post("/reports/validate", h.ValidateReport)
	r.Get("/reports/{id}/metrics", h.GetReportMetrics)
	r.Get("/stats", h.GetTypeStats)
	r.Get("/dashboard", h.GetDashboardStats)
	return r
}

func TestListReportTypes(t *testing.T) {
	router := setupRouter(new(mockReader), new(mockFetcher))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report-types", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []api.ReportTypeInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, len(domain.ReportTypes))
	assert.Equal(t, "comprehensive", got[0].Type)
	assert.NotEmpty(t, got[1].Sections)
}

func TestValidateReport(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expected       api.ValidationResult
	}{
		{
			name:           "valid configuration",
			body:           `{"title": "Quarterly", "report_type": "cost", "file_id": "f-1"}`,
			expectedStatus: http.StatusOK,
			expected:       api.ValidationResult{IsValid: true, Errors: []string{}},
		},
		{
			name:           "every violation is listed",
			body:           `{"title": "", "report_type": "billing"}`,
			expectedStatus: http.StatusOK,
			expected: api.ValidationResult{IsValid: false, Errors: []string{
				"title is required",
				"title must be at least 3 characters",
				`report type "billing" is not supported`,
				"a file must be selected",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(new(mockReader), new(mockFetcher))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/reports/validate", bytes.NewBufferString(tt.body))
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var got api.ValidationResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValidateReport_BadBody(t *testing.T) {
	router := setupRouter(new(mockReader), new(mockFetcher))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reports/validate", bytes.NewBufferString("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReportMetrics(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*mockReader)
		expectedStatus int
		check          func(t *testing.T, body []byte)
	}{
		{
			name: "normalized metrics",
			setupMock: func(m *mockReader) {
				m.On("Get", mock.Anything, "r1").Return(&domain.Report{
					ID:            "r1",
					Configuration: domain.ReportConfiguration{Type: domain.ReportTypePerformance},
					Analysis:      map[string]any{"performance_analysis": map[string]any{"performance_score": 77.0}},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got api.Metrics
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, "r1", got.ReportID)
				assert.Equal(t, "performance", got.ReportType)
				assert.Equal(t, 77.0, got.Metrics["performance_score"])
				assert.Equal(t, "Excellent", got.Metrics["efficiency_rating"])
			},
		},
		{
			name: "backend not found",
			setupMock: func(m *mockReader) {
				m.On("Get", mock.Anything, "r1").Return(nil, &client.HTTPError{StatusCode: 404, Message: "Not found."})
			},
			expectedStatus: http.StatusNotFound,
			check: func(t *testing.T, body []byte) {
				assert.JSONEq(t, `{"error": "Not found."}`, string(body))
			},
		},
		{
			name: "backend down",
			setupMock: func(m *mockReader) {
				m.On("Get", mock.Anything, "r1").Return(nil, errors.New("connection refused"))
			},
			expectedStatus: http.StatusBadGateway,
			check:          func(t *testing.T, body []byte) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := new(mockReader)
			tt.setupMock(reader)
			router := setupRouter(reader, new(mockFetcher))

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/r1/metrics", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			tt.check(t, rec.Body.Bytes())
			reader.AssertExpectations(t)
		})
	}
}

func TestGetTypeStats(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchTypeStats", mock.Anything, []domain.ReportType{domain.ReportTypeSecurity, domain.ReportTypeCost}).
		Return(map[domain.ReportType]domain.DashboardMetrics{
			domain.ReportTypeSecurity: {"total_reports": 3.0},
			domain.ReportTypeCost:     nil,
		})
	router := setupRouter(new(mockReader), fetcher)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats?types=security,cost", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"stats": {"security": {"total_reports": 3}, "cost": null}}`, rec.Body.String())
}

func TestGetTypeStats_DefaultsAndErrors(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchTypeStats", mock.Anything, domain.SupportedStatsTypes).
		Return(map[domain.ReportType]domain.DashboardMetrics{})
	router := setupRouter(new(mockReader), fetcher)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats?types=billing", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	fetcher.AssertNumberOfCalls(t, "FetchTypeStats", 1)
}

func TestGetDashboardStats(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchDashboardStats", mock.Anything).Return(domain.DashboardMetrics{"total_reports": 12.0}, nil)
	router := setupRouter(new(mockReader), fetcher)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"report_type": "", "metrics": {"total_reports": 12}}`, rec.Body.String())
}
