package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

const MinTitleLength = 3

// Result lists every violation found, not only the first
type Result struct {
	IsValid bool
	Errors  []string
}

// Err returns nil for a valid result and an *Error otherwise
func (r Result) Err() error {
	if r.IsValid {
		return nil
	}
	return &Error{Errors: r.Errors}
}

type Error struct {
	Errors []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid report configuration: %s", strings.Join(e.Errors, "; "))
}

type Gate interface {
	Validate(cfg domain.ReportConfiguration) Result
}

type defaultGate struct{}

func NewGate() Gate {
	return defaultGate{}
}

func (defaultGate) Validate(cfg domain.ReportConfiguration) Result {
	return Validate(cfg)
}

func Validate(cfg domain.ReportConfiguration) Result {
	var errs []string

	title := strings.TrimSpace(cfg.Title)
	if title == "" {
		errs = append(errs, "title is required")
	}
	if utf8.RuneCountInString(title) < MinTitleLength {
		errs = append(errs, fmt.Sprintf("title must be at least %d characters", MinTitleLength))
	}

	if !cfg.Type.Valid() {
		errs = append(errs, fmt.Sprintf("report type %q is not supported", cfg.Type))
	}

	if strings.TrimSpace(cfg.FileID) == "" {
		errs = append(errs, "a file must be selected")
	}

	return Result{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}
