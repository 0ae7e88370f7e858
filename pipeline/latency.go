package pipeline

import (
	"sync"
	"time"

	"github.com/codahale/hdrhistogram"
)

// maxTrackedLatency bounds the recorded render durations. Slower renders
// are recorded as this value.
const maxTrackedLatency = time.Minute

// LatencyStats tracks the distribution of render durations.
// It is safe for concurrent use.
type LatencyStats struct {
	mu sync.Mutex
	h  *hdrhistogram.Histogram
}

// LatencySummary is a point in time view of [LatencyStats].
type LatencySummary struct {
	Count int64
	Mean  time.Duration
	P50   time.Duration
	P99   time.Duration
	Max   time.Duration
}

func newLatencyStats() *LatencyStats {
	return &LatencyStats{h: hdrhistogram.New(1, maxTrackedLatency.Microseconds(), 3)}
}

// Record adds one render duration.
func (s *LatencyStats) Record(d time.Duration) {
	us := min(max(d.Microseconds(), 1), maxTrackedLatency.Microseconds())
	s.mu.Lock()
	s.h.RecordValue(us) // Cannot fail, us is within the trackable range.
	s.mu.Unlock()
}

// Summary returns count, mean and quantiles of recorded durations.
func (s *LatencyStats) Summary() LatencySummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	us := func(v int64) time.Duration { return time.Duration(v) * time.Microsecond }
	return LatencySummary{
		Count: s.h.TotalCount(),
		Mean:  time.Duration(s.h.Mean() * float64(time.Microsecond)),
		P50:   us(s.h.ValueAtQuantile(50)),
		P99:   us(s.h.ValueAtQuantile(99)),
		Max:   us(s.h.Max()),
	}
}
