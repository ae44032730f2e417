// ABOUTME: Metrics wrapper for any Generator
// ABOUTME: Records request counts by status and latency per operation

package generation

import (
	"context"
	"time"

	"github.com/2389/fitcheck-studio/internal/metrics"
)

type instrumented struct {
	next    Generator
	metrics *metrics.Metrics
}

// Instrument wraps g so every call is recorded in m. A nil m returns g unchanged.
func Instrument(g Generator, m *metrics.Metrics) Generator {
	if m == nil {
		return g
	}
	return &instrumented{next: g, metrics: m}
}

func (i *instrumented) Generate(ctx context.Context, req *Request) (string, error) {
	start := time.Now()
	out, err := i.next.Generate(ctx, req)
	i.metrics.GenerationFinished(string(req.Operation), time.Since(start), err)
	return out, err
}
