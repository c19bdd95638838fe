package store

import "time"

type TrackedReport struct {
	ID           string
	Title        string
	ReportType   string
	Status       string
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
