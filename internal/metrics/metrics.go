package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID uint16

const (
	// MetricInsertOneRecords is an exported constant or variable used by the audit layer.
	MetricInsertOneRecords MetricID = iota
	// MetricInsertManyRecords is an exported constant or variable used by the audit layer.
	MetricInsertManyRecords
	// MetricUpdateOneRecords is an exported constant or variable used by the audit layer.
	MetricUpdateOneRecords
	// MetricUpdateManyRecords is an exported constant or variable used by the audit layer.
	MetricUpdateManyRecords
	// MetricDeleteOneRecords is an exported constant or variable used by the audit layer.
	MetricDeleteOneRecords
	// MetricDeleteManyRecords is an exported constant or variable used by the audit layer.
	MetricDeleteManyRecords
	// MetricRecordsDispatched is an exported constant or variable used by the audit layer.
	MetricRecordsDispatched
	// MetricBatchesDispatched is an exported constant or variable used by the audit layer.
	MetricBatchesDispatched
	// MetricAppendSuccess is an exported constant or variable used by the audit layer.
	MetricAppendSuccess
	// MetricAppendFailure is an exported constant or variable used by the audit layer.
	MetricAppendFailure
	// MetricSinkAcquireFailure is an exported constant or variable used by the audit layer.
	MetricSinkAcquireFailure
	// MetricSnapshotFailure is an exported constant or variable used by the audit layer.
	MetricSnapshotFailure
	// MetricPairingMissingBefore is an exported constant or variable used by the audit layer.
	MetricPairingMissingBefore
	// MetricAppendLatency is an exported constant or variable used by the audit layer.
	MetricAppendLatency
	// MetricIDCount is an exported constant or variable used by the audit layer.
	MetricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config controls which metric families are recorded.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// Metrics holds atomic counters and optional latency histograms. The write
// path is allocation-free; a nil *Metrics is a valid no-op receiver.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [MetricIDCount]paddedCounter
	histograms    [MetricIDCount]metricHistogram
}

// Snapshot is a point-in-time deep copy of all metrics.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatency,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

func (m *Metrics) Add(id MetricID, n uint64) {
	if m == nil || !m.enabled || id >= MetricIDCount || n == 0 {
		return
	}
	atomic.AddUint64(&m.counters[id].value, n)
}

func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= MetricIDCount {
		return
	}
	if id != MetricAppendLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := Snapshot{
		Counters:   make(map[MetricID]uint64, int(MetricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAppendLatency].buckets[i])
		}
		s.Histograms[MetricAppendLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
