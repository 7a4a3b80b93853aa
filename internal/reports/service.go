package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"resume-analyzer/internal/analyzer"
	"resume-analyzer/internal/extract"
	"resume-analyzer/internal/queue"
	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/storage/object"
	"resume-analyzer/internal/shared/telemetry"
	"resume-analyzer/internal/shared/util"
)

// MaxUploadBytes is the largest accepted resume file.
const MaxUploadBytes = 10 << 20

// Analyzer scores resume text against a job description.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText, jobDescription string) analyzer.Result
}

// Service runs the analysis pipeline and report queries.
type Service struct {
	Repo      Repo
	Analyzer  Analyzer
	Store     object.ObjectStore
	Publisher queue.Publisher
	Now       func() time.Time
}

// AnalyzeInput is one uploaded resume with its job description.
type AnalyzeInput struct {
	FileName       string
	File           io.Reader
	JobDescription string
	RequestID      string
}

// AnalyzeOutput is the stored report and whether the analysis is the fallback.
type AnalyzeOutput struct {
	Report   Report
	Fallback bool
}

// Analyze stages the upload, extracts its text, scores it and stores the report.
// The staged copy is deleted on every return path.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (AnalyzeOutput, error) {
	jobDescription := extract.Normalize(in.JobDescription)
	if jobDescription == "" {
		return AnalyzeOutput{}, fmt.Errorf("%w: job description is required", ErrValidation)
	}
	if in.File == nil {
		return AnalyzeOutput{}, fmt.Errorf("%w: no file uploaded", ErrValidation)
	}
	fileName, err := util.SanitizeFileName(in.FileName)
	if err != nil {
		return AnalyzeOutput{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	in.FileName = fileName
	if err := extract.CheckExtension(in.FileName); err != nil {
		metrics.IncUploadsRejected()
		return AnalyzeOutput{}, err
	}
	if s.Analyzer == nil {
		return AnalyzeOutput{}, ErrAIUnavailable
	}

	data, err := s.stage(ctx, in)
	if err != nil {
		return AnalyzeOutput{}, err
	}

	text, err := extract.Extract(ctx, data, in.FileName)
	if err != nil {
		return AnalyzeOutput{}, err
	}
	if !extract.Usable(text) {
		return AnalyzeOutput{}, ErrExtraction
	}

	result := s.Analyzer.Analyze(ctx, text, jobDescription)

	report := Assemble(result.Analysis, text, jobDescription, in.FileName, s.now())
	saved, err := s.Repo.Save(ctx, report)
	if errors.Is(err, ErrDuplicate) {
		report.ID = NewID(report.UploadedAt)
		saved, err = s.Repo.Save(ctx, report)
	}
	if err != nil {
		return AnalyzeOutput{}, persistence(err)
	}

	metrics.IncReportsCreated()
	evt := queue.NewEvent(queue.EventReportCreated, saved.ID, s.now())
	evt.FileName = saved.FileName
	score := saved.Analysis.FitScore
	evt.FitScore = &score
	evt.RequestID = in.RequestID
	s.publish(ctx, evt)

	return AnalyzeOutput{Report: saved, Fallback: result.Fallback}, nil
}

// stage copies the upload into the object store, reads it back and removes it.
func (s *Service) stage(ctx context.Context, in AnalyzeInput) ([]byte, error) {
	limited := io.LimitReader(in.File, MaxUploadBytes+1)
	if s.Store == nil {
		return readLimited(limited)
	}
	namespace := "uploads"
	if in.RequestID != "" {
		namespace = util.Hash(in.RequestID)[:16]
	}
	key, size, _, err := s.Store.Save(ctx, namespace, in.FileName, limited)
	if err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}
	defer func() {
		if err := s.Store.Delete(context.WithoutCancel(ctx), key); err != nil {
			telemetry.Error("upload.cleanup_failed", map[string]any{
				"storage_key": key,
				"error":       telemetry.ErrorString(err),
			})
		}
	}()
	if size > MaxUploadBytes {
		metrics.IncUploadsRejected()
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, MaxUploadBytes)
	}
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open staged upload: %w", err)
	}
	defer rc.Close()
	return readLimited(rc)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		metrics.IncUploadsRejected()
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, MaxUploadBytes)
	}
	return data, nil
}

// Get returns one report.
func (s *Service) Get(ctx context.Context, id string) (Report, error) {
	report, err := s.Repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Report{}, persistence(err)
	}
	return report, nil
}

// List returns one page of reports.
func (s *Service) List(ctx context.Context, page, limit int) (Page, error) {
	p, err := s.Repo.Paginate(ctx, page, limit)
	if err != nil {
		return Page{}, persistence(err)
	}
	return p, nil
}

// Delete removes a report and announces the deletion.
func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	deleted, err := s.Repo.DeleteByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return "", persistence(err)
	}
	metrics.IncReportsDeleted()
	s.publish(ctx, queue.NewEvent(queue.EventReportDeleted, deleted, s.now()))
	return deleted, nil
}

// Dashboard aggregates statistics over every stored report.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	all, err := s.Repo.List(ctx)
	if err != nil {
		return Dashboard{}, persistence(err)
	}
	return Aggregate(all), nil
}

// Stats returns the store-level aggregate.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	stats, err := s.Repo.AggregateStats(ctx)
	if err != nil {
		return Stats{}, persistence(err)
	}
	return stats, nil
}

func (s *Service) publish(ctx context.Context, evt queue.Event) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(context.WithoutCancel(ctx), evt); err != nil {
		telemetry.Warn("event.publish_failed", map[string]any{
			"type":      evt.Type,
			"report_id": evt.ReportID,
			"error":     telemetry.ErrorString(err),
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// persistence passes domain errors through and wraps anything else as ErrPersistence.
func persistence(err error) error {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidPagination),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
