package reports

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"

	"resume-analyzer/internal/analyzer"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var idPattern = regexp.MustCompile(`^report_[0-9]+_[0-9a-z]{6}$`)

// NewID returns report_<epochMillis>_<6 base36 chars>. Uniqueness is not checked here;
// Save rejects collisions with ErrDuplicate.
func NewID(now time.Time) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return "report_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix)
}

// ValidID reports whether id has the shape produced by NewID.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Assemble builds a fully populated report from an analysis and its normalized inputs.
func Assemble(analysis analyzer.Analysis, resumeText, jobDescription, fileName string, now time.Time) Report {
	now = now.UTC()
	return Report{
		ID:             NewID(now),
		FileName:       fileName,
		UploadedAt:     now,
		ResumeText:     resumeText,
		JobDescription: jobDescription,
		Analysis:       analysis.WithDefaults(),
		Metadata: Metadata{
			TextLength:        utf8.RuneCountInString(resumeText),
			JobDescLength:     utf8.RuneCountInString(jobDescription),
			AnalysisTimestamp: now,
			Version:           SchemaVersion,
		},
	}
}
