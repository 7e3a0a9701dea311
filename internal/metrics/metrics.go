package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a single counter or histogram slot.
type MetricID uint8

const (
	MetricSignupSuccess MetricID = iota
	MetricSignupDuplicate
	MetricSignupVerifySuccess
	MetricSignupVerifyFailure
	MetricLoginChallengeIssued
	MetricLoginFailure
	MetricLoginVerifySuccess
	MetricLoginVerifyFailure
	MetricOTPIssued
	MetricOTPPendingRejected
	MetricOTPVerifySuccess
	MetricOTPVerifyFailure
	MetricOTPExpired
	MetricResendRequest
	MetricResendInvalidPurpose
	MetricResetStage1
	MetricResetStage2
	MetricResetComplete
	MetricResetFailure
	MetricFederatedLogin
	MetricFederatedUserCreated
	MetricFederatedFailure
	MetricSessionIssued
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricNotifyFailure
	MetricVerifyLatency

	MetricIDCount
)

// HistogramBuckets is the number of fixed latency buckets.
const HistogramBuckets = 8

// BucketBounds holds the upper bound of each latency bucket in
// milliseconds; the final bucket is +Inf.
var BucketBounds = [HistogramBuckets - 1]int64{5, 10, 25, 50, 100, 250, 500}

// Config controls metric collection. When Enabled is false every operation
// is a no-op.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// counter slots are padded to a cache line so adjacent metric IDs do not
// false-share under concurrent request load.
type paddedCounter struct {
	value atomic.Uint64
	_     [56]byte
}

type histogram struct {
	buckets [HistogramBuckets]atomic.Uint64
}

// Metrics holds atomic counters and optional latency histograms.
type Metrics struct {
	cfg        Config
	counters   [MetricIDCount]paddedCounter
	histograms [MetricIDCount]histogram
}

// Snapshot is a point-in-time deep copy of all non-zero metrics.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{cfg: cfg}
}

// Inc increments a counter. No-op when metrics are disabled.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.cfg.Enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].value.Add(1)
}

// Observe records a latency sample into the histogram for id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.cfg.Enabled || !m.cfg.EnableLatency || id >= MetricIDCount {
		return
	}
	ms := d.Milliseconds()
	bucket := HistogramBuckets - 1
	for i, bound := range BucketBounds {
		if ms <= bound {
			bucket = i
			break
		}
	}
	m.histograms[id].buckets[bucket].Add(1)
}

// Snapshot copies every non-zero counter and histogram.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil || !m.cfg.Enabled {
		return snap
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		if v := m.counters[id].value.Load(); v > 0 {
			snap.Counters[id] = v
		}
	}
	if m.cfg.EnableLatency {
		for id := MetricID(0); id < MetricIDCount; id++ {
			var total uint64
			buckets := make([]uint64, HistogramBuckets)
			for i := range buckets {
				buckets[i] = m.histograms[id].buckets[i].Load()
				total += buckets[i]
			}
			if total > 0 {
				snap.Histograms[id] = buckets
			}
		}
	}
	return snap
}
