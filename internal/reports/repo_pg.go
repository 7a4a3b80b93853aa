package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const reportColumns = `id, file_name, uploaded_at, resume_text, job_description, analysis, metadata`

// Save inserts a new report.
func (r *PGRepo) Save(ctx context.Context, report Report) (Report, error) {
	if err := validateForSave(report); err != nil {
		return Report{}, err
	}
	analysisPayload, err := json.Marshal(report.Analysis)
	if err != nil {
		return Report{}, err
	}
	metadataPayload, err := json.Marshal(report.Metadata)
	if err != nil {
		return Report{}, err
	}
	const query = `
INSERT INTO reports (id, file_name, uploaded_at, resume_text, job_description, fit_score, analysis, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.DB.ExecContext(ctx, query,
		report.ID,
		report.FileName,
		report.UploadedAt,
		report.ResumeText,
		report.JobDescription,
		report.Analysis.FitScore,
		analysisPayload,
		metadataPayload,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return Report{}, ErrDuplicate
			case pgCheckViolation:
				return Report{}, fmt.Errorf("%w: %s", ErrValidation, pgErr.Message)
			}
		}
		return Report{}, err
	}
	return report, nil
}

// FindByID returns a report by ID.
func (r *PGRepo) FindByID(ctx context.Context, id string) (Report, error) {
	if err := checkID(id); err != nil {
		return Report{}, err
	}
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1 LIMIT 1`
	report, err := scanReport(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	return report, err
}

// Paginate returns one page of reports, newest first.
func (r *PGRepo) Paginate(ctx context.Context, page, limit int) (Page, error) {
	if err := checkPagination(page, limit); err != nil {
		return Page{}, err
	}
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&total); err != nil {
		return Page{}, err
	}
	query := `SELECT ` + reportColumns + ` FROM reports ORDER BY uploaded_at DESC, id DESC LIMIT $1 OFFSET $2`
	list, err := r.query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return Page{}, err
	}
	return Page{Reports: list, Pagination: newPagination(page, limit, total)}, nil
}

// DeleteByID removes a report and returns its ID.
func (r *PGRepo) DeleteByID(ctx context.Context, id string) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return "", err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if affected == 0 {
		return "", ErrNotFound
	}
	return id, nil
}

// AggregateStats computes the fit score aggregate in SQL and attaches the most recent
// summaries.
func (r *PGRepo) AggregateStats(ctx context.Context) (Stats, error) {
	const query = `
SELECT COUNT(*),
       COALESCE(ROUND(AVG(fit_score)), 0)::int,
       COALESCE(MAX(fit_score), 0),
       COALESCE(MIN(fit_score), 0)
FROM reports`
	var stats Stats
	if err := r.DB.QueryRowContext(ctx, query).Scan(
		&stats.TotalReports,
		&stats.AverageFitScore,
		&stats.MaxFitScore,
		&stats.MinFitScore,
	); err != nil {
		return Stats{}, err
	}
	recent, err := r.Recent(ctx, RecentCount)
	if err != nil {
		return Stats{}, err
	}
	stats.RecentReports = summaries(recent)
	return stats, nil
}

// List returns every report, newest first.
func (r *PGRepo) List(ctx context.Context) ([]Report, error) {
	return r.query(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY uploaded_at DESC, id DESC`)
}

// Recent returns up to n reports, newest first.
func (r *PGRepo) Recent(ctx context.Context, n int) ([]Report, error) {
	return r.query(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY uploaded_at DESC, id DESC LIMIT $1`, n)
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Report, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (Report, error) {
	var (
		report          Report
		analysisPayload []byte
		metadataPayload []byte
	)
	if err := row.Scan(
		&report.ID,
		&report.FileName,
		&report.UploadedAt,
		&report.ResumeText,
		&report.JobDescription,
		&analysisPayload,
		&metadataPayload,
	); err != nil {
		return Report{}, err
	}
	if err := json.Unmarshal(analysisPayload, &report.Analysis); err != nil {
		return Report{}, fmt.Errorf("decode analysis for %s: %w", report.ID, err)
	}
	if err := json.Unmarshal(metadataPayload, &report.Metadata); err != nil {
		return Report{}, fmt.Errorf("decode metadata for %s: %w", report.ID, err)
	}
	report.UploadedAt = report.UploadedAt.UTC()
	report.Analysis = report.Analysis.WithDefaults()
	return report, nil
}

var _ Repo = (*PGRepo)(nil)
