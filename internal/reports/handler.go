package reports

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/extract"
	"resume-analyzer/internal/shared/server/middleware"
	"resume-analyzer/internal/shared/server/respond"
)

const (
	fileField           = "resume"
	jobDescriptionField = "jobDescription"
	// multipart framing and the job description ride on top of the file itself
	maxRequestBytes = MaxUploadBytes + 1<<20
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches report routes under /resume and the /reports aliases.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	resume := api.Group("/resume")
	resume.POST("/analyze", h.analyze)
	resume.GET("/reports", h.list)
	resume.GET("/reports/:id", h.get)
	resume.DELETE("/reports/:id", h.delete)
	resume.GET("/dashboard", h.dashboard)
	resume.GET("/stats", h.stats)

	alias := api.Group("/reports")
	alias.GET("", h.list)
	alias.GET("/:id", h.get)
	alias.DELETE("/:id", h.delete)
}

func (h *Handler) analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes)

	form, err := c.MultipartForm()
	if err != nil {
		if isTooLarge(err) {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "File size too large. Maximum size is 10MB.", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "No file uploaded. Please upload a resume file.", nil)
		return
	}
	defer func() { _ = form.RemoveAll() }()

	fileHeader, msg := singleFile(form)
	if msg != "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, msg, nil)
		return
	}
	if fileHeader.Size > MaxUploadBytes {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "File size too large. Maximum size is 10MB.", nil)
		return
	}
	jobDescription := ""
	if values := form.Value[jobDescriptionField]; len(values) > 0 {
		jobDescription = values[0]
	}
	if strings.TrimSpace(jobDescription) == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "Job description is required.", nil)
		return
	}
	if err := extract.CheckExtension(fileHeader.Filename); err != nil {
		h.writeError(c, err, "")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read file", nil)
		return
	}
	defer file.Close()

	out, err := h.Svc.Analyze(c.Request.Context(), AnalyzeInput{
		FileName:       fileHeader.Filename,
		File:           file,
		JobDescription: jobDescription,
		RequestID:      middleware.RequestIDFromContext(c),
	})
	if err != nil {
		h.writeError(c, err, "Failed to save analysis results.")
		return
	}
	c.Set("reportId", out.Report.ID)
	c.Set("analysisFallback", out.Fallback)
	respond.Data(c, http.StatusCreated, out.Report.created(), nil)
}

// singleFile returns the one uploaded resume or a validation message.
func singleFile(form *multipart.Form) (*multipart.FileHeader, string) {
	total := 0
	for field, files := range form.File {
		if field != fileField && len(files) > 0 {
			return nil, "Unexpected field name for file upload."
		}
		total += len(files)
	}
	if total == 0 {
		return nil, "No file uploaded. Please upload a resume file."
	}
	if total > 1 {
		return nil, "Too many files. Only one file is allowed."
	}
	return form.File[fileField][0], ""
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func (h *Handler) list(c *gin.Context) {
	page := queryInt(c, "page", DefaultPage)
	limit := queryInt(c, "limit", DefaultLimit)

	p, err := h.Svc.List(c.Request.Context(), page, limit)
	if err != nil {
		h.writeError(c, err, "Failed to retrieve reports.")
		return
	}
	respond.Data(c, http.StatusOK, p.Reports, gin.H{"pagination": p.Pagination})
}

// queryInt reads a positive integer parameter; missing, zero or non-numeric values use def.
func queryInt(c *gin.Context, key string, def int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v == 0 {
		return def
	}
	return v
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set("reportId", id)
	report, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Failed to retrieve report.")
		return
	}
	respond.Data(c, http.StatusOK, report.Detail(), nil)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set("reportId", id)
	deleted, err := h.Svc.Delete(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Failed to delete report.")
		return
	}
	respond.Data(c, http.StatusOK, gin.H{"deletedId": deleted}, gin.H{"message": "Report deleted successfully."})
}

func (h *Handler) dashboard(c *gin.Context) {
	d, err := h.Svc.Dashboard(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Failed to retrieve dashboard statistics.")
		return
	}
	respond.Data(c, http.StatusOK, d, nil)
}

func (h *Handler) stats(c *gin.Context) {
	s, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Failed to retrieve report statistics.")
		return
	}
	respond.Data(c, http.StatusOK, s, nil)
}

func (h *Handler) writeError(c *gin.Context, err error, persistenceMsg string) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidPagination):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	case errors.Is(err, ErrInvalidID):
		respond.Error(c, http.StatusBadRequest, respond.CodeInvalidID, "Invalid report ID format.", nil)
	case errors.Is(err, extract.ErrUnsupportedFormat):
		respond.Error(c, http.StatusBadRequest, respond.CodeUnsupportedFormat, err.Error(), nil)
	case errors.Is(err, extract.ErrCorruptFile):
		respond.Error(c, http.StatusBadRequest, respond.CodeExtraction, "Error processing file: "+err.Error(), nil)
	case errors.Is(err, ErrExtraction):
		respond.Error(c, http.StatusBadRequest, respond.CodeExtraction, "Unable to extract meaningful text from the uploaded file. Please ensure the file is not corrupted and contains readable text.", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "Report not found.", nil)
	case errors.Is(err, ErrAIUnavailable):
		respond.Error(c, http.StatusInternalServerError, respond.CodeAIUnavailable, "AI analysis failed. Please try again later.", nil)
	case errors.Is(err, ErrPersistence), errors.Is(err, ErrDuplicate):
		if persistenceMsg == "" {
			persistenceMsg = "Failed to save analysis results."
		}
		respond.Error(c, http.StatusInternalServerError, respond.CodePersistence, persistenceMsg, nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "Internal server error.", nil)
	}
}
