package respond

import (
	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/shared/telemetry"
)

// Error codes shared by all handlers.
const (
	CodeValidation        = "validation_error"
	CodeInvalidID         = "invalid_id"
	CodeUnsupportedFormat = "unsupported_format"
	CodeExtraction        = "extraction_failed"
	CodeNotFound          = "not_found"
	CodeAIUnavailable     = "ai_unavailable"
	CodePersistence       = "persistence_error"
	CodeRateLimited       = "rate_limited"
	CodeInternal          = "internal"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if reportID := c.GetString("reportId"); reportID != "" {
		fields["report_id"] = reportID
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
