package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", 200, time.Millisecond)
	m.ObserveCardStage("summarize", "ok", time.Second)
	m.IncLike("ok")

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestExposition(t *testing.T) {
	m := newMetrics()
	m.ObserveAPI("POST", "/api/book", 200, 300*time.Millisecond)
	m.ObserveAPI("POST", "/api/book", 200, 2*time.Second)
	m.ObserveCardStage("illustrate", "upstream_error", 3*time.Second)
	m.IncCardOutcome("created")
	m.APIInflightInc()

	if got := m.apiRequests.Value("POST", "/api/book", "200"); got != 2 {
		t.Fatalf("api requests = %v, want 2", got)
	}
	if got := m.cardStages.Count("illustrate", "upstream_error"); got != 1 {
		t.Fatalf("stage count = %d, want 1", got)
	}

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`bookcard_api_requests_total{method="POST",route="/api/book",status="200"} 2`,
		`bookcard_api_request_duration_seconds_bucket{method="POST",route="/api/book",le="0.5"} 1`,
		`bookcard_api_request_duration_seconds_count{method="POST",route="/api/book"} 2`,
		`bookcard_generation_stage_duration_seconds_bucket{stage="illustrate",status="upstream_error",le="+Inf"} 1`,
		`bookcard_generation_total{outcome="created"} 1`,
		`bookcard_api_inflight_requests 1`,
		"# TYPE bookcard_likes_total counter",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestLabelEscaping(t *testing.T) {
	c := NewCounterVec("x_total", "x", "path")
	c.Inc("a\"b\\c\nd")
	var sb strings.Builder
	if err := c.WritePrometheus(&sb); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), `x_total{path="a\"b\\c\nd"} 1`) {
		t.Fatalf("unexpected exposition: %s", sb.String())
	}
}
