package reports

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"resume-analyzer/internal/analyzer"
	"resume-analyzer/internal/queue"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

const sampleResume = "Jane Doe\nSenior Go Engineer\nBuilt payment services in Go and PostgreSQL for eight years."

// docxBytes packs paragraphs into a minimal WordprocessingML archive.
func docxBytes(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		var escaped bytes.Buffer
		if err := xml.EscapeText(&escaped, []byte(p)); err != nil {
			t.Fatalf("escape: %v", err)
		}
		body.WriteString("<w:p><w:r><w:t>" + escaped.String() + "</w:t></w:r></w:p>")
	}
	files := map[string]string{
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body.String() + `</w:body></w:document>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

type fakeAnalyzer struct {
	mu     sync.Mutex
	calls  int
	result analyzer.Result
	resume string
	jd     string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, resumeText, jobDescription string) analyzer.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.resume = resumeText
	f.jd = jobDescription
	return f.result
}

func (f *fakeAnalyzer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, evt queue.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return f.err
}

func (f *fakePublisher) Events() []queue.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]queue.Event(nil), f.events...)
}

func goodAnalysis() analyzer.Analysis {
	return analyzer.Analysis{
		FitScore:        78,
		MatchedSkills:   []string{"Go", "PostgreSQL"},
		MissingSkills:   []string{"Kubernetes"},
		Suggestions:     "Highlight distributed systems work.",
		Strengths:       []string{"Backend depth"},
		Weaknesses:      []string{},
		ExperienceMatch: "Strong",
		EducationMatch:  "Adequate",
	}
}

// sampleReport builds a valid report uploaded i minutes after baseTime.
func sampleReport(i, score int, matched, missing []string) Report {
	a := goodAnalysis()
	a.FitScore = score
	a.MatchedSkills = matched
	a.MissingSkills = missing
	r := Assemble(a, sampleResume, "Go backend engineer", fmt.Sprintf("resume-%02d.pdf", i), baseTime.Add(time.Duration(i)*time.Minute))
	r.ID = fmt.Sprintf("report_%d_%06d", r.UploadedAt.UnixMilli(), i)
	return r
}

func seed(t *testing.T, repo Repo, reports ...Report) {
	t.Helper()
	for _, r := range reports {
		if _, err := repo.Save(context.Background(), r); err != nil {
			t.Fatalf("Save %s: %v", r.ID, err)
		}
	}
}
