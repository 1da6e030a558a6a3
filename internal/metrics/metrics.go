// Package metrics accounts for the API calls made by a client.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector collects and aggregates request metrics.
type Collector struct {
	// Counters
	requestsTotal atomic.Int64
	errorsTotal   atomic.Int64
	bytesSent     atomic.Int64
	bytesReceived atomic.Int64

	// Response time tracking
	responseTimesSum atomic.Int64
	responseTimesNum atomic.Int64

	// Histogram buckets for response times in ms: <50, <100, <250, <500, <1000, <2500, >=2500
	responseTimeBuckets [7]atomic.Int64

	mu          sync.RWMutex
	errorCounts map[string]int64
	statusCodes map[int]int64
	endpoints   map[string]int64

	startTime time.Time
}

// New creates a new metrics collector.
func New() *Collector {
	return &Collector{
		errorCounts: make(map[string]int64),
		statusCodes: make(map[int]int64),
		endpoints:   make(map[string]int64),
		startTime:   time.Now(),
	}
}

// RecordRequest records a call to endpoint carrying sent bytes of payload.
func (c *Collector) RecordRequest(endpoint string, sent int64) {
	c.requestsTotal.Add(1)
	c.bytesSent.Add(sent)

	c.mu.Lock()
	c.endpoints[endpoint]++
	c.mu.Unlock()
}

// RecordResponse records a completed round trip.
func (c *Collector) RecordResponse(statusCode int, received int64, d time.Duration) {
	c.bytesReceived.Add(received)
	c.responseTimesSum.Add(d.Milliseconds())
	c.responseTimesNum.Add(1)
	c.responseTimeBuckets[bucket(d.Milliseconds())].Add(1)

	c.mu.Lock()
	c.statusCodes[statusCode]++
	c.mu.Unlock()
}

// RecordError records a failed call.
func (c *Collector) RecordError(errorType string) {
	c.errorsTotal.Add(1)

	c.mu.Lock()
	c.errorCounts[errorType]++
	c.mu.Unlock()
}

func bucket(ms int64) int {
	switch {
	case ms < 50:
		return 0
	case ms < 100:
		return 1
	case ms < 250:
		return 2
	case ms < 500:
		return 3
	case ms < 1000:
		return 4
	case ms < 2500:
		return 5
	default:
		return 6
	}
}

// AverageResponseTime returns the mean response time.
func (c *Collector) AverageResponseTime() time.Duration {
	sum := c.responseTimesSum.Load()
	num := c.responseTimesNum.Load()
	if num == 0 {
		return 0
	}
	return time.Duration(sum/num) * time.Millisecond
}

// Snapshot returns a point-in-time copy of all metrics.
func (c *Collector) Snapshot() *Snapshot {
	s := &Snapshot{
		Uptime:              time.Since(c.startTime),
		RequestsTotal:       c.requestsTotal.Load(),
		ErrorsTotal:         c.errorsTotal.Load(),
		BytesSent:           c.bytesSent.Load(),
		BytesReceived:       c.bytesReceived.Load(),
		AverageResponseTime: c.AverageResponseTime(),
		ErrorCounts:         make(map[string]int64),
		StatusCodes:         make(map[int]int64),
		Endpoints:           make(map[string]int64),
		ResponseTimeHist:    make([]int64, len(c.responseTimeBuckets)),
	}

	c.mu.RLock()
	for k, v := range c.errorCounts {
		s.ErrorCounts[k] = v
	}
	for k, v := range c.statusCodes {
		s.StatusCodes[k] = v
	}
	for k, v := range c.endpoints {
		s.Endpoints[k] = v
	}
	c.mu.RUnlock()

	for i := range c.responseTimeBuckets {
		s.ResponseTimeHist[i] = c.responseTimeBuckets[i].Load()
	}

	return s
}

// Snapshot represents a point-in-time view of metrics.
type Snapshot struct {
	Uptime              time.Duration    `json:"uptime"`
	RequestsTotal       int64            `json:"requests_total"`
	ErrorsTotal         int64            `json:"errors_total"`
	BytesSent           int64            `json:"bytes_sent"`
	BytesReceived       int64            `json:"bytes_received"`
	AverageResponseTime time.Duration    `json:"average_response_time"`
	ErrorCounts         map[string]int64 `json:"error_counts"`
	StatusCodes         map[int]int64    `json:"status_codes"`
	Endpoints           map[string]int64 `json:"endpoints"`
	ResponseTimeHist    []int64          `json:"response_time_histogram"`
}

// ErrorRate returns errors/requests.
func (s *Snapshot) ErrorRate() float64 {
	if s.RequestsTotal == 0 {
		return 0
	}
	return float64(s.ErrorsTotal) / float64(s.RequestsTotal)
}

// FailedStatuses counts responses with a 4xx or 5xx status.
func (s *Snapshot) FailedStatuses() int64 {
	var n int64
	for code, count := range s.StatusCodes {
		if code >= 400 {
			n += count
		}
	}
	return n
}

// Summary returns a flat view suitable for structured logging.
func (s *Snapshot) Summary() map[string]interface{} {
	return map[string]interface{}{
		"requests_total":       s.RequestsTotal,
		"errors_total":         s.ErrorsTotal,
		"error_rate":           s.ErrorRate(),
		"failed_statuses":      s.FailedStatuses(),
		"bytes_sent":           s.BytesSent,
		"bytes_received":       s.BytesReceived,
		"avg_response_time_ms": s.AverageResponseTime.Milliseconds(),
	}
}
