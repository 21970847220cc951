package utils

import (
	"sort"
	"sync"
	"time"
)

// Tracks performance metrics across the system
type MetricsCollector struct {
	mu           sync.RWMutex
	requestCount uint64
	errorCount   uint64

	// Maps operation name to list of latencies in nanoseconds
	operationTimes map[string][]int64

	systemStartTime time.Time
}

// OperationStats summarizes the recorded latencies of one operation.
type OperationStats struct {
	Count int           `json:"count"`
	P50   time.Duration `json:"p50"`
	Max   time.Duration `json:"max"`
}

// MetricsSnapshot is a point-in-time copy of the collector.
type MetricsSnapshot struct {
	Uptime     time.Duration             `json:"uptime"`
	Requests   uint64                    `json:"requests"`
	Errors     uint64                    `json:"errors"`
	Operations map[string]OperationStats `json:"operations"`
}

// Keeps memory bounded on long-running engines.
const maxSamplesPerOperation = 1024

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		operationTimes:  make(map[string][]int64),
		systemStartTime: time.Now(),
	}
}

func (mc *MetricsCollector) IncrementRequests() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.requestCount++
}

func (mc *MetricsCollector) IncrementErrors() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.errorCount++
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	samples := append(mc.operationTimes[operationName], duration.Nanoseconds())
	if len(samples) > maxSamplesPerOperation {
		samples = samples[len(samples)-maxSamplesPerOperation:]
	}
	mc.operationTimes[operationName] = samples
}

// Observe records one request for an operation, counting it as an error when err is non-nil.
func (mc *MetricsCollector) Observe(operationName string, start time.Time, err error) {
	mc.IncrementRequests()
	if err != nil {
		mc.IncrementErrors()
	}
	mc.AddOperationLatency(operationName, time.Since(start))
}

func (mc *MetricsCollector) Snapshot() MetricsSnapshot {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	snapshot := MetricsSnapshot{
		Uptime:     time.Since(mc.systemStartTime),
		Requests:   mc.requestCount,
		Errors:     mc.errorCount,
		Operations: make(map[string]OperationStats, len(mc.operationTimes)),
	}
	for name, samples := range mc.operationTimes {
		if len(samples) == 0 {
			continue
		}
		sorted := append([]int64(nil), samples...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		snapshot.Operations[name] = OperationStats{
			Count: len(sorted),
			P50:   time.Duration(sorted[len(sorted)/2]),
			Max:   time.Duration(sorted[len(sorted)-1]),
		}
	}
	return snapshot
}
