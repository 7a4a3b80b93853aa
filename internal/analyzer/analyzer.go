package analyzer

import (
	"context"
	"strings"
	"time"

	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/telemetry"
)

// DefaultTimeout bounds a single model round-trip.
const DefaultTimeout = 60 * time.Second

// AdviceUnavailable is returned by Advise when the model cannot answer.
const AdviceUnavailable = "I apologize, but I'm having trouble processing your request right now. Please try again later."

// Result is the outcome of Analyze. Fallback is set when Analysis is the fixed fallback.
type Result struct {
	Analysis Analysis
	Fallback bool
	Reason   string
}

// Analyzer wraps a Generator with the analysis prompt contract and its fallback policy.
type Analyzer struct {
	gen     llm.Generator
	timeout time.Duration
}

// New returns an Analyzer. A non-positive timeout uses DefaultTimeout.
func New(gen llm.Generator, timeout time.Duration) *Analyzer {
	if gen == nil {
		gen = llm.PlaceholderClient{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Analyzer{gen: gen, timeout: timeout}
}

// Analyze compares resumeText with jobDescription. It never fails: transport errors,
// timeouts and unusable output all resolve to Fallback().
func (a *Analyzer) Analyze(ctx context.Context, resumeText, jobDescription string) Result {
	raw, err := a.generate(ctx, BuildAnalyzePrompt(resumeText, jobDescription))
	if err != nil {
		return a.fallback("generate", err)
	}
	analysis, err := Decode(raw)
	if err != nil {
		return a.fallback("decode", err)
	}
	return Result{Analysis: analysis}
}

// Advise answers a career question, grounded in resumeText when it is non-empty.
// Failures return AdviceUnavailable.
func (a *Analyzer) Advise(ctx context.Context, question, resumeText string) string {
	raw, err := a.generate(ctx, BuildAdvisePrompt(question, resumeText))
	if err != nil {
		telemetry.Warn("advice.unavailable", map[string]any{"error": telemetry.ErrorString(err)})
		return AdviceUnavailable
	}
	reply := strings.TrimSpace(raw)
	if reply == "" {
		return AdviceUnavailable
	}
	return reply
}

func (a *Analyzer) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	start := time.Now()
	raw, err := a.gen.Generate(callCtx, prompt)
	metrics.ObserveAICallMs(float64(time.Since(start).Milliseconds()))
	return raw, err
}

func (a *Analyzer) fallback(stage string, err error) Result {
	metrics.IncAnalysisFallback()
	telemetry.Error("analysis.fallback", map[string]any{
		"stage": stage,
		"error": telemetry.ErrorString(err),
	})
	return Result{Analysis: Fallback(), Fallback: true, Reason: err.Error()}
}
