package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches chat routes to the router group.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/chat", h.message)
	api.GET("/chat/suggestions", h.suggestions)
	api.GET("/chat/history", h.history)
}

type messageRequest struct {
	Message  string `json:"message"`
	ReportID string `json:"reportId"`
}

func (h *Handler) message(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "Message is required.", nil)
		return
	}
	if req.ReportID != "" {
		c.Set("reportId", req.ReportID)
	}

	reply, err := h.Svc.HandleMessage(c.Request.Context(), req.Message, req.ReportID)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "Message is required.", nil)
		case errors.Is(err, ErrAIUnavailable):
			respond.Error(c, http.StatusInternalServerError, respond.CodeAIUnavailable, "AI service is temporarily unavailable. Please try again later.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "Internal server error during chat processing.", nil)
		}
		return
	}
	respond.Data(c, http.StatusOK, reply, nil)
}

func (h *Handler) suggestions(c *gin.Context) {
	set, err := h.Svc.Suggestions(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodePersistence, "Failed to retrieve chat suggestions.", nil)
		return
	}
	respond.Data(c, http.StatusOK, set, nil)
}

func (h *Handler) history(c *gin.Context) {
	respond.Data(c, http.StatusOK, h.Svc.History(), nil)
}
