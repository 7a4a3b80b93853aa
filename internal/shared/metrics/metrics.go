package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	reportsCreatedTotal   atomic.Uint64
	reportsDeletedTotal   atomic.Uint64
	analysisFallbackTotal atomic.Uint64
	chatMessagesTotal     atomic.Uint64
	uploadsRejectedTotal  atomic.Uint64

	aiCallDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncReportsCreated increments the created-reports counter.
func IncReportsCreated() {
	reportsCreatedTotal.Add(1)
}

// IncReportsDeleted increments the deleted-reports counter.
func IncReportsDeleted() {
	reportsDeletedTotal.Add(1)
}

// IncAnalysisFallback counts analyses that returned the fallback result.
func IncAnalysisFallback() {
	analysisFallbackTotal.Add(1)
}

// IncChatMessages increments the chat message counter.
func IncChatMessages() {
	chatMessagesTotal.Add(1)
}

// IncUploadsRejected counts uploads rejected before analysis.
func IncUploadsRejected() {
	uploadsRejectedTotal.Add(1)
}

// ObserveAICallMs records one model round-trip in milliseconds.
func ObserveAICallMs(value float64) {
	if value < 0 {
		value = 0
	}
	aiCallDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "reports_created_total", "Total reports stored", reportsCreatedTotal.Load())
	writeCounter(&buf, "reports_deleted_total", "Total reports deleted", reportsDeletedTotal.Load())
	writeCounter(&buf, "analysis_fallback_total", "Total analyses answered with the fallback result", analysisFallbackTotal.Load())
	writeCounter(&buf, "chat_messages_total", "Total chat messages answered", chatMessagesTotal.Load())
	writeCounter(&buf, "uploads_rejected_total", "Total uploads rejected before analysis", uploadsRejectedTotal.Load())
	writeHistogram(&buf, "ai_call_duration_ms", "Model call duration in milliseconds", aiCallDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
