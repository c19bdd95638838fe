package domain

type ReportStatus string

const (
	ReportStatusDraft      ReportStatus = "draft"
	ReportStatusPending    ReportStatus = "pending"
	ReportStatusProcessing ReportStatus = "processing"
	ReportStatusAnalyzing  ReportStatus = "analyzing"
	ReportStatusGenerating ReportStatus = "generating"
	ReportStatusCompleted  ReportStatus = "completed"
	ReportStatusFailed     ReportStatus = "failed"
	ReportStatusCancelled  ReportStatus = "cancelled"
)

// stages orders the non-terminal path of the lifecycle
var stages = map[ReportStatus]int{
	ReportStatusDraft:      0,
	ReportStatusPending:    1,
	ReportStatusProcessing: 2,
	ReportStatusAnalyzing:  3,
	ReportStatusGenerating: 4,
	ReportStatusCompleted:  5,
}

// ParseReportStatus maps a backend status string onto the lifecycle.
// The backend reports failures as "error" in some endpoints.
func ParseReportStatus(value string) ReportStatus {
	switch value {
	case "":
		return ReportStatusPending
	case "error":
		return ReportStatusFailed
	}
	return ReportStatus(value)
}

func (s ReportStatus) Known() bool {
	if _, ok := stages[s]; ok {
		return true
	}
	return s == ReportStatusFailed || s == ReportStatusCancelled
}

func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusCompleted || s == ReportStatusFailed || s == ReportStatusCancelled
}

// CanTransitionTo reports whether next is reachable from s in one or more
// forward steps. Terminal states have no successors.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	if s.IsTerminal() || !s.Known() || !next.Known() {
		return false
	}
	if next == ReportStatusFailed || next == ReportStatusCancelled {
		return true
	}
	return stages[next] > stages[s]
}
