// Package analyzer scores a resume against a job description with a text-generation model.
package analyzer

// Analysis is the structured result stored inside every report.
type Analysis struct {
	FitScore        int      `json:"fitScore"`
	MatchedSkills   []string `json:"matchedSkills"`
	MissingSkills   []string `json:"missingSkills"`
	Suggestions     string   `json:"suggestions"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	ExperienceMatch string   `json:"experienceMatch"`
	EducationMatch  string   `json:"educationMatch"`
}

// FallbackFitScore is the score reported when no usable model output exists.
const FallbackFitScore = 50

// Fallback returns the fixed low-confidence analysis used whenever the model call or its
// output is unusable. Each call returns fresh slices.
func Fallback() Analysis {
	return Analysis{
		FitScore:        FallbackFitScore,
		MatchedSkills:   []string{"Basic qualifications detected"},
		MissingSkills:   []string{"Please review job requirements"},
		Suggestions:     "Unable to complete AI analysis. Please try again or contact support.",
		Strengths:       []string{"Resume uploaded successfully"},
		Weaknesses:      []string{"AI analysis temporarily unavailable"},
		ExperienceMatch: "Analysis pending",
		EducationMatch:  "Analysis pending",
	}
}

// WithDefaults replaces nil sequences with empty ones so the stored shape is always
// fully populated.
func (a Analysis) WithDefaults() Analysis {
	if a.MatchedSkills == nil {
		a.MatchedSkills = []string{}
	}
	if a.MissingSkills == nil {
		a.MissingSkills = []string{}
	}
	if a.Strengths == nil {
		a.Strengths = []string{}
	}
	if a.Weaknesses == nil {
		a.Weaknesses = []string{}
	}
	return a
}
