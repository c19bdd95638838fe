package tracking

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/store"
)

// Store remembers reports submitted from this machine so that unfinished
// ones can be awaited again after a restart
type Store interface {
	Track(ctx context.Context, report store.TrackedReport) error
	UpdateStatus(ctx context.Context, id string, status string, errorMessage *string) error
	List(ctx context.Context, statuses []string) ([]*store.TrackedReport, error)
	Untrack(ctx context.Context, id string) error
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db: db,
	}, nil
}

func (s *defaultStore) Track(ctx context.Context, report store.TrackedReport) error {
	if report.ID == "" {
		return fmt.Errorf("report id is required")
	}
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}

	query := `
		INSERT OR REPLACE INTO tracked_reports (
			id, title, report_type, status, error_message, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		report.ID,
		report.Title,
		report.ReportType,
		report.Status,
		nullString(report.ErrorMessage),
		report.CreatedAt,
		now,
	)
	if err != nil {
		return fmt.Errorf("track report: %w", err)
	}
	return nil
}

func (s *defaultStore) UpdateStatus(ctx context.Context, id string, status string, errorMessage *string) error {
	query := `UPDATE tracked_reports SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query, status, nullString(errorMessage), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("report not tracked: %s", id)
	}
	return nil
}

func (s *defaultStore) List(ctx context.Context, statuses []string) ([]*store.TrackedReport, error) {
	query := `
		SELECT id, title, report_type, status, error_message, created_at, updated_at
		FROM tracked_reports`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, 0, len(statuses))
		for _, status := range statuses {
			placeholders = append(placeholders, "?")
			args = append(args, status)
		}
		query += fmt.Sprintf(" WHERE status IN (%s)", strings.Join(placeholders, ","))
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tracked reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*store.TrackedReport, 0)
	for rows.Next() {
		var (
			r      store.TrackedReport
			errMsg sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.ReportType, &r.Status, &errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tracked report: %w", err)
		}
		if errMsg.Valid {
			msg := errMsg.String
			r.ErrorMessage = &msg
		}
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}

func (s *defaultStore) Untrack(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tracked_reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("untrack report: %w", err)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
