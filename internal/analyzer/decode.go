package analyzer

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed analysis.schema.json
var analysisSchemaJSON string

var analysisSchema = mustSchema(analysisSchemaJSON)

func mustSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("analysis schema: %v", err))
	}
	return schema
}

var (
	// ErrEmptyOutput is returned for a blank model reply.
	ErrEmptyOutput = errors.New("empty model output")
	// ErrInvalidJSON is returned when the reply is not a JSON document.
	ErrInvalidJSON = errors.New("model output is not valid JSON")
	// ErrSchemaMismatch is returned when required keys are missing or mistyped.
	ErrSchemaMismatch = errors.New("model output does not match the analysis schema")
)

var codeFence = regexp.MustCompile("(?is)^```(?:json)?\\s*(.*?)\\s*```$")

// StripCodeFence removes an optional ```json ... ``` or ``` ... ``` wrapper.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

type rawAnalysis struct {
	FitScore        float64  `json:"fitScore"`
	MatchedSkills   []string `json:"matchedSkills"`
	MissingSkills   []string `json:"missingSkills"`
	Suggestions     string   `json:"suggestions"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	ExperienceMatch *string  `json:"experienceMatch"`
	EducationMatch  *string  `json:"educationMatch"`
}

// Decode parses a model reply into an Analysis. Required keys are fitScore,
// matchedSkills, missingSkills and a non-blank suggestions string. fitScore is rounded and
// clamped to [0,100]; optional fields default to empty values.
func Decode(raw string) (Analysis, error) {
	text := StripCodeFence(raw)
	if text == "" {
		return Analysis{}, ErrEmptyOutput
	}
	if !json.Valid([]byte(text)) {
		return Analysis{}, ErrInvalidJSON
	}
	res, err := analysisSchema.Validate(gojsonschema.NewStringLoader(text))
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Analysis{}, fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(msgs, "; "))
	}

	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	out := Analysis{
		FitScore:      ClampScore(parsed.FitScore),
		MatchedSkills: parsed.MatchedSkills,
		MissingSkills: parsed.MissingSkills,
		Suggestions:   strings.TrimSpace(parsed.Suggestions),
		Strengths:     parsed.Strengths,
		Weaknesses:    parsed.Weaknesses,
	}
	if parsed.ExperienceMatch != nil {
		out.ExperienceMatch = *parsed.ExperienceMatch
	}
	if parsed.EducationMatch != nil {
		out.EducationMatch = *parsed.EducationMatch
	}
	return out.WithDefaults(), nil
}

// ClampScore rounds score to the nearest integer within [0,100].
func ClampScore(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	rounded := math.Round(score)
	switch {
	case rounded < 0:
		return 0
	case rounded > 100:
		return 100
	}
	return int(rounded)
}
