package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Fatal("New() returned nil")
	}

	snap := c.Snapshot()
	if snap.RequestsTotal != 0 || snap.ErrorsTotal != 0 {
		t.Errorf("new collector snapshot = %+v", snap)
	}
}

func TestCollector_RecordRequest(t *testing.T) {
	c := New()

	c.RecordRequest("get-info", 0)
	c.RecordRequest("get-links", 0)
	c.RecordRequest("put-link", 42)

	snap := c.Snapshot()
	if snap.RequestsTotal != 3 {
		t.Errorf("RequestsTotal = %d, want 3", snap.RequestsTotal)
	}
	if snap.BytesSent != 42 {
		t.Errorf("BytesSent = %d, want 42", snap.BytesSent)
	}
	if snap.Endpoints["put-link"] != 1 {
		t.Errorf("Endpoints[put-link] = %d, want 1", snap.Endpoints["put-link"])
	}
}

func TestCollector_RecordError(t *testing.T) {
	c := New()

	c.RecordError("network")
	c.RecordError("network")
	c.RecordError("timeout")

	snap := c.Snapshot()
	if snap.ErrorsTotal != 3 {
		t.Errorf("ErrorsTotal = %d, want 3", snap.ErrorsTotal)
	}
	if snap.ErrorCounts["network"] != 2 {
		t.Errorf("ErrorCounts[network] = %d, want 2", snap.ErrorCounts["network"])
	}
	if snap.ErrorCounts["timeout"] != 1 {
		t.Errorf("ErrorCounts[timeout] = %d, want 1", snap.ErrorCounts["timeout"])
	}
}

func TestCollector_RecordResponse(t *testing.T) {
	c := New()

	c.RecordResponse(200, 10, 100*time.Millisecond)
	c.RecordResponse(200, 20, 200*time.Millisecond)
	c.RecordResponse(404, 30, 300*time.Millisecond)

	snap := c.Snapshot()
	if avg := snap.AverageResponseTime.Milliseconds(); avg != 200 {
		t.Errorf("AverageResponseTime = %dms, want 200ms", avg)
	}
	if snap.BytesReceived != 60 {
		t.Errorf("BytesReceived = %d, want 60", snap.BytesReceived)
	}
	if snap.StatusCodes[200] != 2 || snap.StatusCodes[404] != 1 {
		t.Errorf("StatusCodes = %v", snap.StatusCodes)
	}
	if snap.FailedStatuses() != 1 {
		t.Errorf("FailedStatuses() = %d, want 1", snap.FailedStatuses())
	}
}

func TestCollector_ResponseTimeBuckets(t *testing.T) {
	c := New()

	for _, ms := range []int{30, 75, 150, 400, 750, 2000, 4000} {
		c.RecordResponse(200, 0, time.Duration(ms)*time.Millisecond)
	}

	snap := c.Snapshot()
	for i, n := range snap.ResponseTimeHist {
		if n != 1 {
			t.Errorf("ResponseTimeHist[%d] = %d, want 1", i, n)
		}
	}
}

func TestCollector_AverageResponseTimeEmpty(t *testing.T) {
	if got := New().AverageResponseTime(); got != 0 {
		t.Errorf("AverageResponseTime() = %v, want 0", got)
	}
}

func TestCollector_Concurrent(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordRequest("get-tags", 1)
			c.RecordResponse(200, 1, time.Millisecond)
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.RequestsTotal != 50 || snap.Endpoints["get-tags"] != 50 {
		t.Errorf("snapshot = %+v", snap)
	}
}

// =============================================================================
// Snapshot Tests
// =============================================================================

func TestSnapshot_ErrorRate(t *testing.T) {
	tests := []struct {
		requests int64
		errors   int64
		want     float64
	}{
		{0, 0, 0},
		{4, 1, 0.25},
		{2, 2, 1},
	}

	for _, tt := range tests {
		s := &Snapshot{RequestsTotal: tt.requests, ErrorsTotal: tt.errors}
		if got := s.ErrorRate(); got != tt.want {
			t.Errorf("ErrorRate(%d/%d) = %v, want %v", tt.errors, tt.requests, got, tt.want)
		}
	}
}

func TestSnapshot_Summary(t *testing.T) {
	c := New()
	c.RecordRequest("get-info", 0)
	c.RecordResponse(500, 5, 10*time.Millisecond)

	summary := c.Snapshot().Summary()
	if summary["requests_total"] != int64(1) {
		t.Errorf("requests_total = %v", summary["requests_total"])
	}
	if summary["failed_statuses"] != int64(1) {
		t.Errorf("failed_statuses = %v", summary["failed_statuses"])
	}
}
