package adapters

import (
	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
)

func MapDomainConfigurationToAPI(cfg domain.ReportConfiguration) api.CreateReportRequest {
	return api.CreateReportRequest{
		Title:       cfg.Title,
		Description: cfg.Description,
		ReportType:  string(cfg.Type),
		CSVFileID:   cfg.FileID,
		Configuration: api.ReportOptions{
			IncludeGraphics:        cfg.IncludeGraphics,
			IncludeDetailedTables:  cfg.IncludeDetailedTables,
			IncludeRecommendations: cfg.IncludeRecommendations,
		},
	}
}

// MapAPIReportToDomain converts a backend report. The configuration snapshot
// is taken from the response; callers that submitted the report overwrite it
// with the exact configuration they sent.
func MapAPIReportToDomain(r *api.Report) *domain.Report {
	if r == nil {
		return nil
	}

	analysis := r.AnalysisData
	if analysis == nil {
		analysis = r.AnalysisResults
	}

	generated := r.GeneratedAt
	if generated == nil {
		generated = r.CompletedAt
	}

	return &domain.Report{
		ID: r.ID,
		Configuration: domain.ReportConfiguration{
			Title:       r.Title,
			Description: r.Description,
			Type:        domain.ReportType(r.ReportType),
			FileID:      r.CSVFile,
		},
		Status:       domain.ParseReportStatus(r.Status),
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt,
		GeneratedAt:  generated,
		Analysis:     analysis,
	}
}

func MapAPIStatusToDomain(s *api.ReportStatus) *domain.StatusProbe {
	if s == nil {
		return nil
	}

	return &domain.StatusProbe{
		ID:           s.ID,
		Status:       domain.ParseReportStatus(s.Status),
		Title:        s.Title,
		Type:         domain.ReportType(s.ReportType),
		Progress:     s.Progress,
		ErrorMessage: s.ErrorMessage,
		CreatedAt:    s.CreatedAt,
		CompletedAt:  s.CompletedAt,
	}
}

func MapAPIFileToDomain(f *api.UploadedFile) *domain.UploadedFile {
	if f == nil {
		return nil
	}

	return &domain.UploadedFile{
		ID:               f.ID,
		OriginalFilename: f.OriginalFilename,
		Size:             f.FileSize,
		RowsCount:        f.RowsCount,
		ColumnsCount:     f.ColumnsCount,
		Status:           domain.FileStatus(f.ProcessingStatus),
		ErrorMessage:     f.ErrorMessage,
		UploadDate:       f.UploadDate,
	}
}

func MapDomainReportTypeInfoToAPI(info domain.ReportTypeInfo) api.ReportTypeInfo {
	return api.ReportTypeInfo{
		Type:          string(info.Type),
		Label:         info.Label,
		Description:   info.Description,
		EstimatedTime: info.EstimatedTime,
		Sections:      info.Sections,
	}
}

func MapAPIValidateRequestToDomain(req api.ValidateReportRequest) domain.ReportConfiguration {
	cfg := domain.DefaultReportConfiguration()
	cfg.Title = req.Title
	cfg.Description = req.Description
	cfg.Type = domain.ReportType(req.ReportType)
	cfg.FileID = req.FileID
	return cfg
}
