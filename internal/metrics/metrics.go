// Package metrics holds the engine's in-process flow counters. Counters are
// plain atomics padded to a cache line; a disabled instance turns every
// operation into a no-op so callers never branch.
package metrics

import "sync/atomic"

// MetricID identifies one counter.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginLocked
	MetricTOTPRequired
	MetricTOTPSuccess
	MetricTOTPFailure
	MetricRegisterSuccess
	MetricRegisterDuplicate
	MetricCaptchaFailed
	MetricCaptchaGenerated
	MetricCaptchaSwept
	MetricPasswordChangeSuccess
	MetricPasswordChangeInvalidOld
	MetricPasswordResetRequest
	MetricPasswordResetConfirmSuccess
	MetricPasswordResetConfirmFailure
	MetricEmailVerifySuccess
	MetricEmailVerifyFailure
	MetricRateLimitHit
	MetricMailSent
	MetricMailFailed
	metricIDCount
)

// IDCount is the number of defined counters, for exporters that iterate.
const IDCount = int(metricIDCount)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config toggles the whole instance.
type Config struct {
	Enabled bool
}

// Metrics is safe for concurrent use. A nil *Metrics is valid and inert.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	Counters map[MetricID]uint64
}

// New creates a Metrics instance per cfg.
func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counting is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the counter. Unknown IDs are ignored.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Add adds n to the counter. Used by the sweep, which removes in batches.
func (m *Metrics) Add(id MetricID, n uint64) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, n)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter. Disabled instances return an empty map.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{Counters: map[MetricID]uint64{}}
	}
	s := Snapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
