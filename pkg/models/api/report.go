package api

import (
	"encoding/json"
	"time"
)

type ReportOptions struct {
	IncludeGraphics        bool `json:"include_graphics"`
	IncludeDetailedTables  bool `json:"include_detailed_tables"`
	IncludeRecommendations bool `json:"include_recommendations"`
}

type CreateReportRequest struct {
	Title         string        `json:"title"`
	Description   string        `json:"description,omitempty"`
	ReportType    string        `json:"report_type"`
	CSVFileID     string        `json:"csv_file_id"`
	Configuration ReportOptions `json:"configuration"`
}

type Report struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	ReportType   string         `json:"report_type"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message"`
	CSVFile      string         `json:"csv_file"`
	CreatedAt    time.Time      `json:"created_at"`
	GeneratedAt  *time.Time     `json:"generated_at"`
	CompletedAt  *time.Time     `json:"completed_at"`
	AnalysisData map[string]any `json:"analysis_data"`
	// older backends expose the payload under analysis_results
	AnalysisResults map[string]any `json:"analysis_results"`
}

type ReportList struct {
	Count   int      `json:"count"`
	Results []Report `json:"results"`
}

// UnmarshalJSON accepts both the paginated envelope and a bare array
func (l *ReportList) UnmarshalJSON(data []byte) error {
	var items []Report
	if err := json.Unmarshal(data, &items); err == nil {
		l.Results = items
		l.Count = len(items)
		return nil
	}

	type envelope ReportList
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	*l = ReportList(e)
	return nil
}

type ReportStatus struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	Title        string     `json:"title"`
	ReportType   string     `json:"report_type"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	Progress     int        `json:"progress"`
	ErrorMessage string     `json:"error_message"`
}

type UploadedFile struct {
	ID               string    `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	ProcessingStatus string    `json:"processing_status"`
	ErrorMessage     string    `json:"error_message"`
	RowsCount        int       `json:"rows_count"`
	ColumnsCount     int       `json:"columns_count"`
	UploadDate       time.Time `json:"upload_date"`
}

type ReportTypeInfo struct {
	Type          string   `json:"type"`
	Label         string   `json:"label"`
	Description   string   `json:"description"`
	EstimatedTime string   `json:"estimated_time"`
	Sections      []string `json:"output_sections"`
}

type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

type ValidateReportRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ReportType  string `json:"report_type"`
	FileID      string `json:"file_id"`
}

type Metrics struct {
	ReportID   string         `json:"report_id,omitempty"`
	ReportType string         `json:"report_type"`
	Metrics    map[string]any `json:"metrics"`
}

type TypeStats struct {
	Stats map[string]map[string]any `json:"stats"`
}

type Error struct {
	Error string `json:"error"`
}
