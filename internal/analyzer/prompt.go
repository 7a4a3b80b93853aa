package analyzer

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/analyze.txt
	analyzePrompt string
	//go:embed prompts/advise.txt
	advisePrompt string
)

// ResumeExcerptLimit bounds how much resume text is sent with a chat question.
const ResumeExcerptLimit = 1000

// BuildAnalyzePrompt embeds both texts verbatim in the analysis prompt.
func BuildAnalyzePrompt(resumeText, jobDescription string) string {
	return strings.NewReplacer(
		"{{RESUME_TEXT}}", resumeText,
		"{{JOB_DESCRIPTION}}", jobDescription,
	).Replace(analyzePrompt)
}

// BuildAdvisePrompt embeds the question and the first ResumeExcerptLimit characters of
// the resume.
func BuildAdvisePrompt(question, resumeText string) string {
	context := "No resume provided."
	if excerpt := strings.TrimSpace(resumeText); excerpt != "" {
		runes := []rune(excerpt)
		if len(runes) > ResumeExcerptLimit {
			excerpt = string(runes[:ResumeExcerptLimit]) + "..."
		}
		context = excerpt
	}
	return strings.NewReplacer(
		"{{RESUME_CONTEXT}}", context,
		"{{QUESTION}}", strings.TrimSpace(question),
	).Replace(advisePrompt)
}
