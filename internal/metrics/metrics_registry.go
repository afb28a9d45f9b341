package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsRegistry counts workflow outcomes and event-log posts since start.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Uint64
	started  time.Time
}

func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]*atomic.Uint64),
		started:  time.Now(),
	}
}

func (mr *MetricsRegistry) counter(name string) *atomic.Uint64 {
	mr.mu.RLock()
	c := mr.counters[name]
	mr.mu.RUnlock()
	if c != nil {
		return c
	}

	mr.mu.Lock()
	defer mr.mu.Unlock()
	if c = mr.counters[name]; c == nil {
		c = new(atomic.Uint64)
		mr.counters[name] = c
	}
	return c
}

func (mr *MetricsRegistry) Inc(name string) {
	mr.counter(name).Add(1)
}

// RecordOutcome bumps "<workflow>.<outcome>".
func (mr *MetricsRegistry) RecordOutcome(workflow, outcome string) {
	mr.Inc(workflow + "." + outcome)
}

func (mr *MetricsRegistry) Get(name string) uint64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	if c := mr.counters[name]; c != nil {
		return c.Load()
	}
	return 0
}

type Sample struct {
	Name  string
	Value uint64
}

// Snapshot returns every counter sorted by name.
func (mr *MetricsRegistry) Snapshot() []Sample {
	mr.mu.RLock()
	samples := make([]Sample, 0, len(mr.counters))
	for name, c := range mr.counters {
		samples = append(samples, Sample{Name: name, Value: c.Load()})
	}
	mr.mu.RUnlock()

	sort.Slice(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })
	return samples
}

func (mr *MetricsRegistry) Uptime() time.Duration {
	return time.Since(mr.started)
}

var GlobalRegistry *MetricsRegistry

func InitGlobalRegistry() {
	GlobalRegistry = NewMetricsRegistry()
}

func GetRegistry() *MetricsRegistry {
	if GlobalRegistry == nil {
		InitGlobalRegistry()
	}
	return GlobalRegistry
}
