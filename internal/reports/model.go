package reports

import (
	"fmt"
	"math"
	"time"

	"resume-analyzer/internal/analyzer"
)

// SchemaVersion is stamped into every report's metadata.
const SchemaVersion = "1.0"

// Report is one stored analysis. It is immutable once saved.
type Report struct {
	ID             string            `json:"id"`
	FileName       string            `json:"fileName"`
	UploadedAt     time.Time         `json:"uploadedAt"`
	ResumeText     string            `json:"resumeText"`
	JobDescription string            `json:"jobDescription"`
	Analysis       analyzer.Analysis `json:"analysis"`
	Metadata       Metadata          `json:"metadata"`
}

// Metadata describes the inputs of an analysis.
type Metadata struct {
	TextLength        int       `json:"textLength"`
	JobDescLength     int       `json:"jobDescLength"`
	AnalysisTimestamp time.Time `json:"analysisTimestamp"`
	Version           string    `json:"version"`
}

// FormattedFitScore renders the score as a percentage string.
func (r Report) FormattedFitScore() string {
	return fmt.Sprintf("%d%%", r.Analysis.FitScore)
}

// SkillMatchPercentage is matched / (matched + missing), rounded; 0 when both are empty.
func (r Report) SkillMatchPercentage() int {
	matched := len(r.Analysis.MatchedSkills)
	total := matched + len(r.Analysis.MissingSkills)
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(matched) / float64(total) * 100))
}

// Summary projects the report for listings.
func (r Report) Summary() Summary {
	return Summary{
		ID:                   r.ID,
		FileName:             r.FileName,
		FitScore:             r.Analysis.FitScore,
		SkillMatchPercentage: r.SkillMatchPercentage(),
		UploadedAt:           r.UploadedAt,
		MatchedSkillsCount:   len(r.Analysis.MatchedSkills),
		MissingSkillsCount:   len(r.Analysis.MissingSkills),
	}
}

// Detail is the single-report response shape.
func (r Report) Detail() Detail {
	return Detail{
		Report:               r,
		FormattedFitScore:    r.FormattedFitScore(),
		SkillMatchPercentage: r.SkillMatchPercentage(),
	}
}

// Summary is the compact listing view of a report.
type Summary struct {
	ID                   string    `json:"id"`
	FileName             string    `json:"fileName"`
	FitScore             int       `json:"fitScore"`
	SkillMatchPercentage int       `json:"skillMatchPercentage"`
	UploadedAt           time.Time `json:"uploadedAt"`
	MatchedSkillsCount   int       `json:"matchedSkillsCount"`
	MissingSkillsCount   int       `json:"missingSkillsCount"`
}

// Detail is a report with its derived display values.
type Detail struct {
	Report
	FormattedFitScore    string `json:"formattedFitScore"`
	SkillMatchPercentage int    `json:"skillMatchPercentage"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalReports int  `json:"totalReports"`
	HasNext      bool `json:"hasNext"`
	HasPrev      bool `json:"hasPrev"`
}

// Page is a slice of reports, newest first, with its pagination.
type Page struct {
	Reports    []Report   `json:"reports"`
	Pagination Pagination `json:"pagination"`
}

// Stats is the store-level aggregate over all reports.
type Stats struct {
	TotalReports    int       `json:"totalReports"`
	AverageFitScore int       `json:"averageFitScore"`
	MaxFitScore     int       `json:"maxFitScore"`
	MinFitScore     int       `json:"minFitScore"`
	RecentReports   []Summary `json:"recentReports"`
}

// Created is returned by the analyze endpoint.
type Created struct {
	ReportID   string            `json:"reportId"`
	FileName   string            `json:"fileName"`
	UploadedAt time.Time         `json:"uploadedAt"`
	Analysis   analyzer.Analysis `json:"analysis"`
	Metadata   Metadata          `json:"metadata"`
}

func (r Report) created() Created {
	return Created{
		ReportID:   r.ID,
		FileName:   r.FileName,
		UploadedAt: r.UploadedAt,
		Analysis:   r.Analysis,
		Metadata:   r.Metadata,
	}
}
