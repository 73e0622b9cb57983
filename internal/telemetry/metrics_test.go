package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CountDispatch("ok")
	m.CountDispatch("ok")
	m.CountDispatch("unknown")
	m.SetQueueDepth(7)
	m.CountTargetEvent("halted")
	m.ObserveHandler("reset", 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.dispatches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("unknown")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.queueDepth))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.targetEvents.WithLabelValues("halted")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.handlerDuration))
}

func TestMetrics_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	families, err := reg.Gather()
	assert.NoError(t, err)
	// Counters without observations gather empty; the gauge is always
	// present.
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "tether_queue_depth")

	assert.Panics(t, func() { New(reg) }, "double registration must panic")
}
