package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/reports"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r
}

func TestChatEndpoint(t *testing.T) {
	router := newTestRouter(&Service{Reports: reports.NewMemoryRepo(), Advisor: &fakeAdvisor{}})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "ok", body: `{"message":"How do I negotiate salary?"}`, status: http.StatusOK},
		{name: "unknown report", body: `{"message":"Tips?","reportId":"report_1_abcdef"}`, status: http.StatusOK},
		{name: "blank", body: `{"message":"   "}`, status: http.StatusBadRequest},
		{name: "missing", body: `{}`, status: http.StatusBadRequest},
		{name: "malformed", body: `{"message":`, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var body struct {
				Success bool  `json:"success"`
				Data    Reply `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !body.Success || body.Data.Response != "Keep learning." || body.Data.HasContext {
				t.Fatalf("unexpected body %s", rec.Body.String())
			}
		})
	}
}

func TestChatEndpointWithoutAdvisor(t *testing.T) {
	router := newTestRouter(&Service{Reports: reports.NewMemoryRepo()})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "ai_unavailable") {
		t.Fatalf("expected 500 ai_unavailable, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSuggestionsAndHistoryEndpoints(t *testing.T) {
	router := newTestRouter(&Service{Reports: reports.NewMemoryRepo()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/suggestions", nil))
	var body struct {
		Data SuggestionSet `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || len(body.Data.Suggestions) != 3 {
		t.Fatalf("unexpected suggestions %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/history", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"history":[]`) {
		t.Fatalf("unexpected history %d %s", rec.Code, rec.Body.String())
	}
}
