package reports

import (
	"math"
	"sort"
	"time"
)

// TopSkillsLimit caps topSkills and improvementAreas.
const TopSkillsLimit = 10

// SkillCount is one entry of a skill frequency ranking.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// Activity is one recent upload on the dashboard.
type Activity struct {
	ReportID   string    `json:"reportId"`
	FileName   string    `json:"fileName"`
	FitScore   int       `json:"fitScore"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Dashboard holds statistics over the whole report collection.
type Dashboard struct {
	TotalReports     int          `json:"totalReports"`
	AverageFitScore  int          `json:"averageFitScore"`
	MaxFitScore      int          `json:"maxFitScore"`
	MinFitScore      int          `json:"minFitScore"`
	TopSkills        []SkillCount `json:"topSkills"`
	ImprovementAreas []SkillCount `json:"improvementAreas"`
	RecentActivity   []Activity   `json:"recentActivity"`
}

// Aggregate computes dashboard statistics. It does not modify reports; an empty input
// yields zero values and empty arrays.
func Aggregate(reports []Report) Dashboard {
	d := Dashboard{
		TotalReports:     len(reports),
		TopSkills:        []SkillCount{},
		ImprovementAreas: []SkillCount{},
		RecentActivity:   []Activity{},
	}
	if len(reports) == 0 {
		return d
	}

	sum := 0
	d.MaxFitScore = reports[0].Analysis.FitScore
	d.MinFitScore = reports[0].Analysis.FitScore
	matched := make([][]string, 0, len(reports))
	missing := make([][]string, 0, len(reports))
	for _, r := range reports {
		score := r.Analysis.FitScore
		sum += score
		d.MaxFitScore = max(d.MaxFitScore, score)
		d.MinFitScore = min(d.MinFitScore, score)
		matched = append(matched, r.Analysis.MatchedSkills)
		missing = append(missing, r.Analysis.MissingSkills)
	}
	d.AverageFitScore = int(math.Round(float64(sum) / float64(len(reports))))
	d.TopSkills = rankSkills(matched, TopSkillsLimit)
	d.ImprovementAreas = rankSkills(missing, TopSkillsLimit)

	recent := make([]Report, len(reports))
	copy(recent, reports)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].UploadedAt.After(recent[j].UploadedAt)
	})
	if len(recent) > RecentCount {
		recent = recent[:RecentCount]
	}
	for _, r := range recent {
		d.RecentActivity = append(d.RecentActivity, Activity{
			ReportID:   r.ID,
			FileName:   r.FileName,
			FitScore:   r.Analysis.FitScore,
			UploadedAt: r.UploadedAt,
		})
	}
	return d
}

// rankSkills counts every non-empty skill and returns the top n by descending count.
// Equal counts keep first-seen order.
func rankSkills(lists [][]string, n int) []SkillCount {
	index := make(map[string]int)
	counts := make([]SkillCount, 0)
	for _, list := range lists {
		for _, skill := range list {
			if skill == "" {
				continue
			}
			if i, ok := index[skill]; ok {
				counts[i].Count++
				continue
			}
			index[skill] = len(counts)
			counts = append(counts, SkillCount{Skill: skill, Count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
