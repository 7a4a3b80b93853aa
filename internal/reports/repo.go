package reports

import (
	"context"
	"fmt"
	"strings"
)

// Pagination bounds accepted by Paginate.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	RecentCount  = 5
)

// Repo defines persistence operations for reports.
type Repo interface {
	Save(ctx context.Context, report Report) (Report, error)
	FindByID(ctx context.Context, id string) (Report, error)
	Paginate(ctx context.Context, page, limit int) (Page, error)
	DeleteByID(ctx context.Context, id string) (string, error)
	AggregateStats(ctx context.Context) (Stats, error)
	List(ctx context.Context) ([]Report, error)
	Recent(ctx context.Context, n int) ([]Report, error)
}

func validateForSave(r Report) error {
	var missing []string
	if strings.TrimSpace(r.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(r.FileName) == "" {
		missing = append(missing, "fileName")
	}
	if strings.TrimSpace(r.ResumeText) == "" {
		missing = append(missing, "resumeText")
	}
	if strings.TrimSpace(r.JobDescription) == "" {
		missing = append(missing, "jobDescription")
	}
	if strings.TrimSpace(r.Analysis.Suggestions) == "" {
		missing = append(missing, "analysis.suggestions")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	if r.Analysis.FitScore < 0 || r.Analysis.FitScore > 100 {
		return fmt.Errorf("%w: fitScore %d out of range", ErrValidation, r.Analysis.FitScore)
	}
	return nil
}

func checkID(id string) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	return nil
}

func checkPagination(page, limit int) error {
	if page < 1 || limit < 1 || limit > MaxLimit {
		return fmt.Errorf("%w: page must be >= 1, limit must be between 1-%d", ErrInvalidPagination, MaxLimit)
	}
	return nil
}

func newPagination(page, limit, total int) Pagination {
	totalPages := (total + limit - 1) / limit
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalReports: total,
		HasNext:      page < totalPages,
		HasPrev:      page > 1,
	}
}

func summaries(reports []Report) []Summary {
	out := make([]Summary, 0, len(reports))
	for _, r := range reports {
		out = append(out, r.Summary())
	}
	return out
}
