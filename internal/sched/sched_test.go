package sched

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelayedFires(t *testing.T) {
	var fired atomic.Int32
	h := Delayed(10*time.Millisecond, func() { fired.Add(1) })
	defer h.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestDelayedStopBeforeFire(t *testing.T) {
	var fired atomic.Int32
	h := Delayed(30*time.Millisecond, func() { fired.Add(1) })
	h.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestRepeatingTicks(t *testing.T) {
	var ticks atomic.Int32
	h := Repeating(10*time.Millisecond, func() { ticks.Add(1) })

	time.Sleep(55 * time.Millisecond)
	h.Stop()

	got := ticks.Load()
	assert.GreaterOrEqual(t, got, int32(2))

	// No more ticks after Stop.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, got, ticks.Load())
}

func TestStopIsIdempotent(t *testing.T) {
	h := Repeating(10*time.Millisecond, func() {})
	h.Stop()
	h.Stop()

	d := Delayed(10*time.Millisecond, func() {})
	d.Stop()
	d.Stop()
}

func TestStopOnNilHandle(t *testing.T) {
	var h *Handle
	h.Stop()
	assert.False(t, h.Active())
}
