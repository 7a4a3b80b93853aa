package analyzer

import (
	"errors"
	"reflect"
	"testing"
)

const validReply = `{
  "fitScore": 82,
  "matchedSkills": ["Go", "PostgreSQL", "Go"],
  "missingSkills": ["Kubernetes"],
  "suggestions": "Add a Kubernetes project.",
  "strengths": ["Backend depth"],
  "weaknesses": ["No cloud certs"],
  "experienceMatch": "Strong",
  "educationMatch": "Meets requirements"
}`

func TestDecodeValidReply(t *testing.T) {
	got, err := Decode(validReply)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := Analysis{
		FitScore:        82,
		MatchedSkills:   []string{"Go", "PostgreSQL", "Go"},
		MissingSkills:   []string{"Kubernetes"},
		Suggestions:     "Add a Kubernetes project.",
		Strengths:       []string{"Backend depth"},
		Weaknesses:      []string{"No cloud certs"},
		ExperienceMatch: "Strong",
		EducationMatch:  "Meets requirements",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Decode mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestDecodeStripsCodeFences(t *testing.T) {
	for _, raw := range []string{
		"```json\n" + validReply + "\n```",
		"```JSON\n" + validReply + "```",
		"```\n" + validReply + "\n```\n",
		"  " + validReply + "  ",
	} {
		got, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode(%q): %v", raw[:10], err)
		}
		if got.FitScore != 82 {
			t.Fatalf("expected fitScore 82, got %d", got.FitScore)
		}
	}
}

func TestDecodeDefaultsOptionalFields(t *testing.T) {
	got, err := Decode(`{"fitScore":0,"matchedSkills":[],"missingSkills":["SQL"],"suggestions":"Learn SQL","strengths":null}`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.FitScore != 0 {
		t.Fatalf("expected fitScore 0 to be accepted, got %d", got.FitScore)
	}
	if got.Strengths == nil || got.Weaknesses == nil || len(got.Strengths) != 0 {
		t.Fatalf("expected empty non-nil optional slices, got %#v", got)
	}
	if got.ExperienceMatch != "" || got.EducationMatch != "" {
		t.Fatalf("expected empty match strings, got %#v", got)
	}
}

func TestDecodeClampsScore(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{raw: `140`, want: 100},
		{raw: `-5`, want: 0},
		{raw: `72.5`, want: 73},
		{raw: `72.4`, want: 72},
	}
	for _, tt := range tests {
		got, err := Decode(`{"fitScore":` + tt.raw + `,"matchedSkills":[],"missingSkills":[],"suggestions":"x"}`)
		if err != nil {
			t.Fatalf("Decode(%s): %v", tt.raw, err)
		}
		if got.FitScore != tt.want {
			t.Fatalf("fitScore %s: got %d want %d", tt.raw, got.FitScore, tt.want)
		}
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{name: "empty", raw: "   ", want: ErrEmptyOutput},
		{name: "prose", raw: "Sure! Here is the analysis you asked for.", want: ErrInvalidJSON},
		{name: "truncated", raw: `{"fitScore": 80, "matchedSkills": [`, want: ErrInvalidJSON},
		{name: "missing fitScore", raw: `{"matchedSkills":[],"missingSkills":[],"suggestions":"x"}`, want: ErrSchemaMismatch},
		{name: "missing suggestions", raw: `{"fitScore":10,"matchedSkills":[],"missingSkills":[]}`, want: ErrSchemaMismatch},
		{name: "blank suggestions", raw: `{"fitScore":10,"matchedSkills":[],"missingSkills":[],"suggestions":"  "}`, want: ErrSchemaMismatch},
		{name: "string score", raw: `{"fitScore":"80","matchedSkills":[],"missingSkills":[],"suggestions":"x"}`, want: ErrSchemaMismatch},
		{name: "skills not array", raw: `{"fitScore":80,"matchedSkills":"Go","missingSkills":[],"suggestions":"x"}`, want: ErrSchemaMismatch},
		{name: "array document", raw: `[1,2,3]`, want: ErrSchemaMismatch},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.raw); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFallbackReturnsFreshCopies(t *testing.T) {
	a := Fallback()
	a.MatchedSkills[0] = "mutated"
	if Fallback().MatchedSkills[0] != "Basic qualifications detected" {
		t.Fatalf("fallback shared state across calls")
	}
}
