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
	ocrRelayedTotal        atomic.Uint64
	ocrRejectedTotal       atomic.Uint64
	ocrUpstreamFailedTotal atomic.Uint64
	loginNewTotal          atomic.Uint64
	loginReturningTotal    atomic.Uint64

	ocrUpstreamDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000})
)

// IncOCRRelayed increments the successfully relayed counter.
func IncOCRRelayed() {
	ocrRelayedTotal.Add(1)
}

// IncOCRRejected increments the counter of uploads rejected before relay.
func IncOCRRejected() {
	ocrRejectedTotal.Add(1)
}

// IncOCRUpstreamFailed increments the upstream failure counter.
func IncOCRUpstreamFailed() {
	ocrUpstreamFailedTotal.Add(1)
}

// IncLoginNew increments the first-login counter.
func IncLoginNew() {
	loginNewTotal.Add(1)
}

// IncLoginReturning increments the returning-login counter.
func IncLoginReturning() {
	loginReturningTotal.Add(1)
}

// ObserveOCRUpstreamDurationMs records one upstream OCR round trip.
func ObserveOCRUpstreamDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	ocrUpstreamDuration.Observe(value)
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
	writeCounter(&buf, "ocr_relayed_total", "Total receipts relayed upstream", ocrRelayedTotal.Load())
	writeCounter(&buf, "ocr_rejected_total", "Total uploads rejected before relay", ocrRejectedTotal.Load())
	writeCounter(&buf, "ocr_upstream_failed_total", "Total upstream OCR failures", ocrUpstreamFailedTotal.Load())
	writeCounter(&buf, "login_new_total", "Total first logins", loginNewTotal.Load())
	writeCounter(&buf, "login_returning_total", "Total returning logins", loginReturningTotal.Load())
	writeHistogram(&buf, "ocr_upstream_duration_ms", "Upstream OCR round trip in milliseconds", ocrUpstreamDuration.Snapshot())
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
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
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
