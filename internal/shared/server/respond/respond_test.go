package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		Error(c, http.StatusNotFound, CodeNotFound, "Report not found.", gin.H{"id": "x"})
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != CodeNotFound || body.Error.Message != "Report not found." {
		t.Fatalf("unexpected error body: %+v", body.Error)
	}
}

func TestDataEnvelopeKeepsReservedKeys(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ok", func(c *gin.Context) {
		Data(c, http.StatusOK, []int{1, 2}, gin.H{"pagination": gin.H{"currentPage": 1}, "success": false})
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ok", nil))

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["success"] != true {
		t.Fatalf("expected success=true, got %v", body["success"])
	}
	if _, ok := body["pagination"]; !ok {
		t.Fatalf("expected pagination key")
	}
	if data, ok := body["data"].([]any); !ok || len(data) != 2 {
		t.Fatalf("unexpected data: %v", body["data"])
	}
}
