// Package chat answers single-turn career questions, optionally grounded in a stored report.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-analyzer/internal/reports"
	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/telemetry"
)

var (
	ErrValidation    = errors.New("message is required")
	ErrAIUnavailable = errors.New("AI service is temporarily unavailable")
)

const (
	recentWindow   = 3
	maxSuggestions = 5
	lowFitScore    = 70
)

// Advisor produces free-text career advice.
type Advisor interface {
	Advise(ctx context.Context, question, resumeText string) string
}

// ReportReader is the slice of the report store the chat needs.
type ReportReader interface {
	FindByID(ctx context.Context, id string) (reports.Report, error)
	Recent(ctx context.Context, n int) ([]reports.Report, error)
}

// Service holds chat dependencies. It keeps no conversation state.
type Service struct {
	Reports ReportReader
	Advisor Advisor
	Now     func() time.Time
}

// Reply is the response to one chat message.
type Reply struct {
	Message    string    `json:"message"`
	Response   string    `json:"response"`
	Timestamp  time.Time `json:"timestamp"`
	HasContext bool      `json:"hasContext"`
}

// Suggestion is a prompt the client can offer the user.
type Suggestion struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

// SuggestionSet is the suggestions payload.
type SuggestionSet struct {
	Suggestions        []Suggestion `json:"suggestions"`
	RecentReportsCount int          `json:"recentReportsCount"`
}

// History is the chat history payload. Conversations are not stored.
type History struct {
	History []Reply `json:"history"`
	Message string  `json:"message"`
}

// HandleMessage answers message. A reportID that cannot be resolved is ignored and the
// question is answered without resume context.
func (s *Service) HandleMessage(ctx context.Context, message, reportID string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrValidation
	}
	if s.Advisor == nil {
		return Reply{}, ErrAIUnavailable
	}

	resumeText := ""
	if reportID = strings.TrimSpace(reportID); reportID != "" && s.Reports != nil {
		report, err := s.Reports.FindByID(ctx, reportID)
		if err != nil {
			telemetry.Warn("chat.context_unavailable", map[string]any{
				"report_id": reportID,
				"error":     telemetry.ErrorString(err),
			})
		} else {
			resumeText = report.ResumeText
		}
	}

	response := s.Advisor.Advise(ctx, message, resumeText)
	metrics.IncChatMessages()
	return Reply{
		Message:    message,
		Response:   response,
		Timestamp:  s.now(),
		HasContext: resumeText != "",
	}, nil
}

// Suggestions derives follow-up questions from the most recent reports.
func (s *Service) Suggestions(ctx context.Context) (SuggestionSet, error) {
	var recent []reports.Report
	if s.Reports != nil {
		var err error
		recent, err = s.Reports.Recent(ctx, recentWindow)
		if err != nil {
			return SuggestionSet{}, fmt.Errorf("load recent reports: %w", err)
		}
	}
	return SuggestionSet{
		Suggestions:        suggestionsFor(recent),
		RecentReportsCount: len(recent),
	}, nil
}

func suggestionsFor(recent []reports.Report) []Suggestion {
	if len(recent) == 0 {
		return []Suggestion{
			{Type: "general", Text: "How can I improve my resume?", Priority: "high"},
			{Type: "general", Text: "What skills are most in demand in tech?", Priority: "medium"},
			{Type: "general", Text: "How do I write a compelling cover letter?", Priority: "medium"},
		}
	}

	latest := recent[0].Analysis
	out := make([]Suggestion, 0, maxSuggestions)
	if len(latest.MissingSkills) > 0 {
		skills := latest.MissingSkills
		if len(skills) > 2 {
			skills = skills[:2]
		}
		out = append(out, Suggestion{
			Type:     "skill_improvement",
			Text:     fmt.Sprintf("How can I improve my %s skills?", strings.Join(skills, " and ")),
			Priority: "high",
		})
	}
	if latest.FitScore < lowFitScore {
		out = append(out, Suggestion{
			Type:     "resume_optimization",
			Text:     "What can I do to make my resume more attractive to employers?",
			Priority: "high",
		})
	}
	out = append(out,
		Suggestion{Type: "career_guidance", Text: "What are the trending skills in my field?", Priority: "medium"},
		Suggestion{Type: "interview_prep", Text: "How should I prepare for interviews in my industry?", Priority: "medium"},
	)
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// History returns the empty history placeholder.
func (s *Service) History() History {
	return History{History: []Reply{}, Message: "Chat history feature coming soon!"}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
