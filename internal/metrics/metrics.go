package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched           int64
	FetchErrors            int64
	ItemsParsed            int64
	SuccessfulTranslations int64
	FailedTranslations     int64
	CacheHits              int64
	CacheMisses            int64

	// Timings
	LastRequestTime    time.Duration
	AverageRequestTime time.Duration
	TotalRequestTime   time.Duration
	RequestCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementFeedsFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched++
}

func (m *Metrics) IncrementFetchErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchErrors++
}

func (m *Metrics) AddItemsParsed(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsParsed += int64(n)
}

func (m *Metrics) IncrementSuccessfulTranslations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuccessfulTranslations++
}

func (m *Metrics) IncrementFailedTranslations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailedTranslations++
}

func (m *Metrics) IncrementCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *Metrics) IncrementCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *Metrics) RecordRequestTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRequestTime = duration
	m.TotalRequestTime += duration
	m.RequestCount++

	if m.RequestCount > 0 {
		m.AverageRequestTime = m.TotalRequestTime / time.Duration(m.RequestCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":           m.FeedsFetched,
		"fetch_errors":            m.FetchErrors,
		"items_parsed":            m.ItemsParsed,
		"successful_translations": m.SuccessfulTranslations,
		"failed_translations":     m.FailedTranslations,
		"cache_hits":              m.CacheHits,
		"cache_misses":            m.CacheMisses,
		"last_request_time_ms":    m.LastRequestTime.Milliseconds(),
		"average_request_time_ms": m.AverageRequestTime.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
