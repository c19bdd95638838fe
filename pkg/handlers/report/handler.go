package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/de-tools/report-atlas/pkg/adapters"
	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/metrics"
	"github.com/de-tools/report-atlas/pkg/services/validation"
	"github.com/de-tools/report-atlas/pkg/store/client"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Reader interface {
	Get(ctx context.Context, id string) (*domain.Report, error)
}

type Handler struct {
	reports Reader
	fetcher metrics.Fetcher
	gate    validation.Gate
}

func NewHandler(reports Reader, fetcher metrics.Fetcher, gate validation.Gate) *Handler {
	if gate == nil {
		gate = validation.NewGate()
	}
	return &Handler{
		reports: reports,
		fetcher: fetcher,
		gate:    gate,
	}
}

func (h *Handler) ListReportTypes(w http.ResponseWriter, r *http.Request) {
	response := make([]api.ReportTypeInfo, 0, len(domain.ReportTypes))
	for _, t := range domain.ReportTypes {
		info, _ := t.Info()
		response = append(response, adapters.MapDomainReportTypeInfoToAPI(info))
	}
	writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *Handler) ValidateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ValidateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.gate.Validate(adapters.MapAPIValidateRequestToDomain(req))
	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	writeJSON(ctx, w, http.StatusOK, api.ValidationResult{IsValid: result.IsValid, Errors: errs})
}

func (h *Handler) GetReportMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	id := chi.URLParam(r, "id")

	report, err := h.reports.Get(ctx, id)
	if err != nil {
		logger.Error().Err(err).Str("report_id", id).Msg("failed to load report")
		writeBackendError(ctx, w, err)
		return
	}

	t := report.Configuration.Type
	writeJSON(ctx, w, http.StatusOK, api.Metrics{
		ReportID:   report.ID,
		ReportType: string(t),
		Metrics:    metrics.Normalize(report.Analysis, t),
	})
}

func (h *Handler) GetTypeStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	types := domain.SupportedStatsTypes
	if raw := r.URL.Query().Get("types"); raw != "" {
		types = nil
		for _, value := range strings.Split(raw, ",") {
			t, err := domain.ParseReportType(strings.TrimSpace(value))
			if err != nil {
				writeError(ctx, w, http.StatusBadRequest, err.Error())
				return
			}
			types = append(types, t)
		}
	}

	stats := h.fetcher.FetchTypeStats(ctx, types)
	response := api.TypeStats{Stats: make(map[string]map[string]any, len(stats))}
	for t, m := range stats {
		response.Stats[string(t)] = m
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	stats, err := h.fetcher.FetchDashboardStats(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch dashboard stats")
		writeBackendError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, api.Metrics{Metrics: stats})
}

// writeBackendError keeps not-found and auth failures recognizable and maps
// everything else to a bad gateway
func writeBackendError(ctx context.Context, w http.ResponseWriter, err error) {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden:
			writeError(ctx, w, httpErr.StatusCode, httpErr.Message)
			return
		}
	}
	writeError(ctx, w, http.StatusBadGateway, "report backend unavailable")
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	writeJSON(ctx, w, status, api.Error{Error: msg})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}
