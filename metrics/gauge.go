// Package metrics provides lock-free scalar aggregation for values many
// simrun goroutines update concurrently, such as the total move propensity
// across all running polymers.
package metrics

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Gauge encapsulates a float64 for non-locking atomic operations. Adapted
// from the teacher's AtomicFloat64: retry-on-conflict is deliberately not
// built in here either — a caller whose CAS loses a race should re-read and
// decide whether to retry, not have a stale addend silently reapplied.
type Gauge struct {
	val float64
}

// NewGauge returns a Gauge initialized to val.
func NewGauge(val float64) *Gauge {
	return &Gauge{val: val}
}

// Read atomically reads the current value.
func (g *Gauge) Read() float64 {
	bits := atomic.LoadUint64((*uint64)(unsafe.Pointer(&g.val)))
	return math.Float64frombits(bits)
}

// Add attempts to add delta to the gauge in a single compare-and-swap.
// succeeded is false if another goroutine updated the value first; the
// caller decides whether to retry with a freshly computed delta.
func (g *Gauge) Add(delta float64) (newVal float64, succeeded bool) {
	old := g.Read()
	newVal = old + delta
	succeeded = atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&g.val)),
		math.Float64bits(old),
		math.Float64bits(newVal))
	return
}

// Set atomically overwrites the value, returning true on success.
func (g *Gauge) Set(val float64) (succeeded bool) {
	old := g.Read()
	succeeded = atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&g.val)),
		math.Float64bits(old),
		math.Float64bits(val))
	return
}
