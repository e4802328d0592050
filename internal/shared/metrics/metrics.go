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
	applicationSubmittedTotal atomic.Uint64
	transitionAppliedTotal    atomic.Uint64
	transitionRejectedTotal   atomic.Uint64
	attemptStartedTotal       atomic.Uint64
	attemptSubmittedTotal     atomic.Uint64
	proctoringViolationTotal  atomic.Uint64

	attemptDuration = newHistogram([]float64{1, 5, 10, 15, 30, 45, 60, 90, 120, 180})
)

// IncApplicationSubmitted increments the submitted-applications counter.
func IncApplicationSubmitted() {
	applicationSubmittedTotal.Add(1)
}

// IncTransitionApplied increments the applied-transitions counter.
func IncTransitionApplied() {
	transitionAppliedTotal.Add(1)
}

// IncTransitionRejected increments the rejected-transitions counter
// (illegal jumps and lost status races).
func IncTransitionRejected() {
	transitionRejectedTotal.Add(1)
}

// IncAttemptStarted increments the started-attempts counter.
func IncAttemptStarted() {
	attemptStartedTotal.Add(1)
}

// IncAttemptSubmitted increments the submitted-attempts counter.
func IncAttemptSubmitted() {
	attemptSubmittedTotal.Add(1)
}

// IncProctoringViolation increments the proctoring-violations counter.
func IncProctoringViolation() {
	proctoringViolationTotal.Add(1)
}

// ObserveAttemptDurationMinutes records how long an attempt ran.
func ObserveAttemptDurationMinutes(value float64) {
	if value < 0 {
		value = 0
	}
	attemptDuration.Observe(value)
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
	writeCounter(&buf, "application_submitted_total", "Total applications submitted", applicationSubmittedTotal.Load())
	writeCounter(&buf, "application_transition_applied_total", "Total status transitions applied", transitionAppliedTotal.Load())
	writeCounter(&buf, "application_transition_rejected_total", "Total status transitions rejected", transitionRejectedTotal.Load())
	writeCounter(&buf, "test_attempt_started_total", "Total test attempts started", attemptStartedTotal.Load())
	writeCounter(&buf, "test_attempt_submitted_total", "Total test attempts submitted", attemptSubmittedTotal.Load())
	writeCounter(&buf, "proctoring_violation_total", "Total proctoring violations recorded", proctoringViolationTotal.Load())
	writeHistogram(&buf, "test_attempt_duration_minutes", "Test attempt duration in minutes", attemptDuration.Snapshot())
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
	// Per-bucket counts; rendering cumulates them.
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
