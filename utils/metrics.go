package utils

import (
	"sync"
	"time"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	TotalRequests   int64
	FailedRequests  int64
	totalLatency    time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Метрики операций по счетам
	Operations       map[string]int64
	FailedOperations map[string]int64
	LastOperation    time.Time

	// Метрики ошибок
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// NewMetrics создает пустой набор метрик
func NewMetrics() *Metrics {
	return &Metrics{
		Operations:       make(map[string]int64),
		FailedOperations: make(map[string]int64),
		ErrorTypes:       make(map[string]int64),
	}
}

// GetMetrics возвращает общий экземпляр метрик
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = NewMetrics()
	})
	return metrics
}

// RecordRequest записывает метрики HTTP-запроса
func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.totalLatency += duration
	m.AverageLatency = m.totalLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()
	if failed {
		m.FailedRequests++
	}
}

// RecordOperation записывает результат операции (debit, credit, transfer, ...)
func (m *Metrics) RecordOperation(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastOperation = time.Now()
	m.Operations[operation]++
	if err != nil {
		m.FailedOperations[operation]++
		m.recordError(err)
	}
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordError(err)
}

func (m *Metrics) recordError(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}
	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot возвращает снимок текущих метрик
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"total_requests":    m.TotalRequests,
		"failed_requests":   m.FailedRequests,
		"average_latency":   m.AverageLatency.String(),
		"operations":        copyCounters(m.Operations),
		"failed_operations": copyCounters(m.FailedOperations),
		"error_count":       m.ErrorCount,
		"last_error_time":   m.LastErrorTime,
		"error_types":       copyCounters(m.ErrorTypes),
	}
}

// ResetMetrics сбрасывает все метрики
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.totalLatency = 0
	m.AverageLatency = 0
	m.Operations = make(map[string]int64)
	m.FailedOperations = make(map[string]int64)
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}

func copyCounters(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
