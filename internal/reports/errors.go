package reports

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidID         = errors.New("invalid report ID format")
	ErrNotFound          = errors.New("report not found")
	ErrDuplicate         = errors.New("report already exists")
	ErrInvalidPagination = errors.New("invalid pagination parameters")
	ErrExtraction        = errors.New("unable to extract meaningful text from the uploaded file")
	ErrAIUnavailable     = errors.New("AI analysis failed")
	ErrPersistence       = errors.New("failed to save analysis results")
)
