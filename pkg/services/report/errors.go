package report

import (
	"errors"
	"fmt"
)

var (
	ErrCancelled      = errors.New("report polling cancelled")
	ErrAlreadyPolling = errors.New("report is already being polled")
	ErrNotPolling     = errors.New("report is not being polled")
	ErrPollingTimeout = errors.New("report polling timed out")
)

// GenerationFailedError carries the server's error message verbatim
type GenerationFailedError struct {
	ReportID string
	Message  string
}

func (e *GenerationFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("report %s generation failed", e.ReportID)
	}
	return fmt.Sprintf("report %s generation failed: %s", e.ReportID, e.Message)
}

type PollingTimeoutError struct {
	ReportID string
	Attempts int
}

func (e *PollingTimeoutError) Error() string {
	return fmt.Sprintf("report %s not finished after %d polls", e.ReportID, e.Attempts)
}

func (e *PollingTimeoutError) Is(target error) bool {
	return target == ErrPollingTimeout
}
