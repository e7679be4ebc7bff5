package metrics

import "github.com/prometheus/client_golang/prometheus"

// CRMMetrics exposes counters/histograms for the sales workspace flows.
type CRMMetrics struct {
	chatSendsTotal     *prometheus.CounterVec
	searchesTotal      *prometheus.CounterVec
	promotionsTotal    prometheus.Counter
	pipelineMovesTotal *prometheus.CounterVec
	llmLatency         *prometheus.HistogramVec
	rateLimitedTotal   *prometheus.CounterVec
}

func NewCRMMetrics(reg prometheus.Registerer) *CRMMetrics {
	m := &CRMMetrics{
		chatSendsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lamitex",
			Subsystem: "chat",
			Name:      "sends_total",
			Help:      "Total chat panel sends by outcome",
		}, []string{"outcome", "attachment"}),
		searchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lamitex",
			Subsystem: "prospecting",
			Name:      "searches_total",
			Help:      "Total grounded prospect searches by outcome",
		}, []string{"outcome"}),
		promotionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lamitex",
			Subsystem: "prospecting",
			Name:      "promotions_total",
			Help:      "Prospects promoted to leads",
		}),
		pipelineMovesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lamitex",
			Subsystem: "pipeline",
			Name:      "moves_total",
			Help:      "Leads dropped onto a pipeline column",
		}, []string{"to"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lamitex",
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Latency of model requests",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"operation", "outcome"}),
		rateLimitedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lamitex",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}, []string{"backend"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.chatSendsTotal, m.searchesTotal, m.promotionsTotal, m.pipelineMovesTotal, m.llmLatency, m.rateLimitedTotal)
	return m
}

func (m *CRMMetrics) ObserveChatSend(outcome string, withAttachment bool) {
	if m == nil {
		return
	}
	label := "false"
	if withAttachment {
		label = "true"
	}
	m.chatSendsTotal.WithLabelValues(outcome, label).Inc()
}

func (m *CRMMetrics) ObserveSearch(outcome string) {
	if m == nil {
		return
	}
	m.searchesTotal.WithLabelValues(outcome).Inc()
}

func (m *CRMMetrics) ObservePromotion() {
	if m == nil {
		return
	}
	m.promotionsTotal.Inc()
}

func (m *CRMMetrics) ObservePipelineMove(to string) {
	if m == nil {
		return
	}
	m.pipelineMovesTotal.WithLabelValues(to).Inc()
}

// ObserveLLMLatency records how long a model call took.
func (m *CRMMetrics) ObserveLLMLatency(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(operation, outcome).Observe(seconds)
}

func (m *CRMMetrics) ObserveRateLimited(backend string) {
	if m == nil {
		return
	}
	m.rateLimitedTotal.WithLabelValues(backend).Inc()
}
