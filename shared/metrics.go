package shared

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ServiceMetrics tracks performance and per-strategy hit counts for a service
type ServiceMetrics struct {
	serviceName         string
	totalRequests       int64
	successfulRequests  int64
	failedRequests      int64
	totalProcessingTime time.Duration
	counters            map[string]int64
	lastUpdated         time.Time
	performance         *PerformanceMetrics
	mutex               sync.RWMutex
}

// MetricsSnapshot is a point-in-time, serializable copy of ServiceMetrics
type MetricsSnapshot struct {
	ServiceName           string           `json:"service_name"`
	TotalRequests         int64            `json:"total_requests"`
	SuccessfulRequests    int64            `json:"successful_requests"`
	FailedRequests        int64            `json:"failed_requests"`
	SuccessRate           float64          `json:"success_rate"`
	AverageProcessingTime time.Duration    `json:"average_processing_time"`
	MinProcessingTime     time.Duration    `json:"min_processing_time"`
	MaxProcessingTime     time.Duration    `json:"max_processing_time"`
	P95ProcessingTime     time.Duration    `json:"p95_processing_time"`
	Counters              map[string]int64 `json:"counters"`
	LastUpdated           time.Time        `json:"last_updated"`
}

// NewServiceMetrics creates a new metrics tracker for a service
func NewServiceMetrics(serviceName string) *ServiceMetrics {
	return &ServiceMetrics{
		serviceName: serviceName,
		counters:    make(map[string]int64),
		lastUpdated: time.Now(),
		performance: NewPerformanceMetrics(),
	}
}

// RecordRequest records a request with its success status and processing time
func (m *ServiceMetrics) RecordRequest(success bool, processingTime time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.totalRequests++
	m.totalProcessingTime += processingTime
	if success {
		m.successfulRequests++
	} else {
		m.failedRequests++
	}
	m.lastUpdated = time.Now()

	m.performance.RecordProcessingTime(processingTime)
}

// IncrementCounter increments a named counter
func (m *ServiceMetrics) IncrementCounter(key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.counters[key]++
	m.lastUpdated = time.Now()
}

// GetCounter returns the current value of a named counter
func (m *ServiceMetrics) GetCounter(key string) int64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.counters[key]
}

// GetSnapshot returns a thread-safe snapshot of current metrics
func (m *ServiceMetrics) GetSnapshot() MetricsSnapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}

	snapshot := MetricsSnapshot{
		ServiceName:        m.serviceName,
		TotalRequests:      m.totalRequests,
		SuccessfulRequests: m.successfulRequests,
		FailedRequests:     m.failedRequests,
		Counters:           counters,
		LastUpdated:        m.lastUpdated,
	}
	if m.totalRequests > 0 {
		snapshot.SuccessRate = float64(m.successfulRequests) / float64(m.totalRequests) * 100.0
		snapshot.AverageProcessingTime = m.totalProcessingTime / time.Duration(m.totalRequests)
	}

	snapshot.MinProcessingTime, snapshot.MaxProcessingTime, snapshot.P95ProcessingTime = m.performance.Snapshot()
	return snapshot
}

// LogSummary logs a comprehensive metrics summary
func (m *ServiceMetrics) LogSummary() {
	snapshot := m.GetSnapshot()

	logrus.WithFields(logrus.Fields{
		"service_name":            snapshot.ServiceName,
		"total_requests":          snapshot.TotalRequests,
		"successful_requests":     snapshot.SuccessfulRequests,
		"failed_requests":         snapshot.FailedRequests,
		"success_rate":            snapshot.SuccessRate,
		"average_processing_time": snapshot.AverageProcessingTime,
		"p95_processing_time":     snapshot.P95ProcessingTime,
		"counters":                snapshot.Counters,
	}).Info("Service metrics summary")
}

// Reset resets all metrics to zero
func (m *ServiceMetrics) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.totalRequests = 0
	m.successfulRequests = 0
	m.failedRequests = 0
	m.totalProcessingTime = 0
	m.counters = make(map[string]int64)
	m.lastUpdated = time.Now()
	m.performance = NewPerformanceMetrics()

	logrus.WithField("service_name", m.serviceName).Info("Service metrics reset")
}

// PerformanceMetrics keeps a sliding window of processing times
type PerformanceMetrics struct {
	minProcessingTime time.Duration
	maxProcessingTime time.Duration
	processingTimes   []time.Duration
	mutex             sync.Mutex
}

const performanceWindow = 1000

// NewPerformanceMetrics creates a new performance metrics tracker
func NewPerformanceMetrics() *PerformanceMetrics {
	return &PerformanceMetrics{
		processingTimes: make([]time.Duration, 0, performanceWindow),
	}
}

// RecordProcessingTime records a processing time sample
func (pm *PerformanceMetrics) RecordProcessingTime(duration time.Duration) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pm.minProcessingTime == 0 || duration < pm.minProcessingTime {
		pm.minProcessingTime = duration
	}
	if duration > pm.maxProcessingTime {
		pm.maxProcessingTime = duration
	}

	if len(pm.processingTimes) >= performanceWindow {
		pm.processingTimes = pm.processingTimes[1:]
	}
	pm.processingTimes = append(pm.processingTimes, duration)
}

// Snapshot returns min, max and P95 over the current window
func (pm *PerformanceMetrics) Snapshot() (minTime, maxTime, p95 time.Duration) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if len(pm.processingTimes) == 0 {
		return 0, 0, 0
	}

	times := make([]time.Duration, len(pm.processingTimes))
	copy(times, pm.processingTimes)
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	p95Index := int(float64(len(times)) * 0.95)
	if p95Index >= len(times) {
		p95Index = len(times) - 1
	}

	return pm.minProcessingTime, pm.maxProcessingTime, times[p95Index]
}
