package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestHistogramRendersCumulativeBuckets(t *testing.T) {
	h := newHistogram([]float64{1, 5, 10})
	h.Observe(0.5)
	h.Observe(3)
	h.Observe(7)
	h.Observe(100)

	var buf bytes.Buffer
	writeHistogram(&buf, "sample_minutes", "Sample durations", h.Snapshot())
	out := buf.String()

	for _, line := range []string{
		`sample_minutes_bucket{le="1"} 1`,
		`sample_minutes_bucket{le="5"} 2`,
		`sample_minutes_bucket{le="10"} 3`,
		`sample_minutes_bucket{le="+Inf"} 4`,
		`sample_minutes_sum 110.5`,
		`sample_minutes_count 4`,
	} {
		if !strings.Contains(out, line+"\n") {
			t.Fatalf("rendered histogram missing %q:\n%s", line, out)
		}
	}
}

func TestHistogramRepeatedObservationsStayConsistent(t *testing.T) {
	h := newHistogram([]float64{10, 60})
	for i := 0; i < 5; i++ {
		h.Observe(30)
	}

	var buf bytes.Buffer
	writeHistogram(&buf, "sample_minutes", "Sample durations", h.Snapshot())
	out := buf.String()

	if !strings.Contains(out, `sample_minutes_bucket{le="60"} 5`+"\n") {
		t.Fatalf("le=60 bucket should hold exactly 5 observations:\n%s", out)
	}
	if !strings.Contains(out, `sample_minutes_bucket{le="10"} 0`+"\n") {
		t.Fatalf("le=10 bucket should stay empty:\n%s", out)
	}
}
