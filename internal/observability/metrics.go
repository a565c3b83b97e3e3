package observability

import (
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Metrics holds the process-wide counters exposed on /metrics. Every method
// is a no-op on a nil receiver, so callers never check whether metrics are on.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	llmRequests *CounterVec
	llmLatency  *HistogramVec

	cardStages   *HistogramVec
	cardOutcomes *CounterVec
	likes        *CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the shared instance on first call when enabled. A disabled
// process keeps Current() nil.
func Init(enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() { instance = newMetrics() })
	return instance
}

func Current() *Metrics { return instance }

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("bookcard_api_requests_total", "API requests by method, route and status.", "method", "route", "status"),
		apiLatency: NewHistogramVec("bookcard_api_request_duration_seconds", "API request latency in seconds.",
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}, "method", "route"),
		apiInflight: NewGauge("bookcard_api_inflight_requests", "In-flight API requests."),

		llmRequests: NewCounterVec("bookcard_llm_requests_total", "OpenAI calls by model, endpoint and status.", "model", "endpoint", "status"),
		llmLatency: NewHistogramVec("bookcard_llm_request_duration_seconds", "OpenAI call latency in seconds.",
			[]float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120}, "model", "endpoint"),

		cardStages: NewHistogramVec("bookcard_generation_stage_duration_seconds", "Card generation stage latency by outcome.",
			[]float64{0.05, 0.25, 1, 2, 5, 10, 30, 60, 120}, "stage", "status"),
		cardOutcomes: NewCounterVec("bookcard_generation_total", "Card generation attempts by outcome.", "outcome"),
		likes:        NewCounterVec("bookcard_likes_total", "Like attempts by outcome.", "outcome"),
	}
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveLLMRequest(model, endpoint, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.llmRequests.Inc(model, endpoint, status)
	m.llmLatency.Observe(dur.Seconds(), model, endpoint)
}

// ObserveCardStage records one pipeline stage; status is "ok" or an error code.
func (m *Metrics) ObserveCardStage(stage, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.cardStages.Observe(dur.Seconds(), stage, status)
}

// IncCardOutcome counts a createCard/regenerate result: created, exists or failed.
func (m *Metrics) IncCardOutcome(outcome string) {
	if m != nil {
		m.cardOutcomes.Inc(outcome)
	}
}

func (m *Metrics) IncLike(outcome string) {
	if m != nil {
		m.likes.Inc(outcome)
	}
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency,
		m.cardStages, m.cardOutcomes, m.likes,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}
