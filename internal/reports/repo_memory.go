package reports

import (
	"context"
	"math"
	"slices"
	"sort"
	"sync"
)

// MemoryRepo stores reports in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Report
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Report)}
}

// Save stores a copy of the report.
func (r *MemoryRepo) Save(ctx context.Context, report Report) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if err := validateForSave(report); err != nil {
		return Report{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[report.ID]; exists {
		return Report{}, ErrDuplicate
	}
	r.byID[report.ID] = clone(report)
	return clone(report), nil
}

// FindByID returns a report by its ID.
func (r *MemoryRepo) FindByID(ctx context.Context, id string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if err := checkID(id); err != nil {
		return Report{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.byID[id]
	if !ok {
		return Report{}, ErrNotFound
	}
	return clone(report), nil
}

// Paginate returns one page of reports, newest first.
func (r *MemoryRepo) Paginate(ctx context.Context, page, limit int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if err := checkPagination(page, limit); err != nil {
		return Page{}, err
	}
	all := r.sorted()
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return Page{
		Reports:    all[start:end],
		Pagination: newPagination(page, limit, len(all)),
	}, nil
}

// DeleteByID removes a report and returns its ID.
func (r *MemoryRepo) DeleteByID(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkID(id); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return "", ErrNotFound
	}
	delete(r.byID, id)
	return id, nil
}

// AggregateStats computes count, rounded mean, max and min fit scores plus the most
// recent summaries.
func (r *MemoryRepo) AggregateStats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	all := r.sorted()
	stats := Stats{TotalReports: len(all)}
	if len(all) > 0 {
		sum := 0
		stats.MaxFitScore = all[0].Analysis.FitScore
		stats.MinFitScore = all[0].Analysis.FitScore
		for _, rep := range all {
			score := rep.Analysis.FitScore
			sum += score
			stats.MaxFitScore = max(stats.MaxFitScore, score)
			stats.MinFitScore = min(stats.MinFitScore, score)
		}
		stats.AverageFitScore = int(math.Round(float64(sum) / float64(len(all))))
	}
	if len(all) > RecentCount {
		all = all[:RecentCount]
	}
	stats.RecentReports = summaries(all)
	return stats, nil
}

// List returns every report, newest first.
func (r *MemoryRepo) List(ctx context.Context) ([]Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.sorted(), nil
}

// Recent returns up to n reports, newest first.
func (r *MemoryRepo) Recent(ctx context.Context, n int) ([]Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all := r.sorted()
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (r *MemoryRepo) sorted() []Report {
	r.mu.RLock()
	out := make([]Report, 0, len(r.byID))
	for _, rep := range r.byID {
		out = append(out, clone(rep))
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}

func clone(r Report) Report {
	r.Analysis.MatchedSkills = slices.Clone(r.Analysis.MatchedSkills)
	r.Analysis.MissingSkills = slices.Clone(r.Analysis.MissingSkills)
	r.Analysis.Strengths = slices.Clone(r.Analysis.Strengths)
	r.Analysis.Weaknesses = slices.Clone(r.Analysis.Weaknesses)
	return r
}

var _ Repo = (*MemoryRepo)(nil)
