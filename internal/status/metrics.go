package status

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts pipeline and delivery activity.
type Metrics struct {
	Runs         *prometheus.CounterVec
	SendAttempts *prometheus.CounterVec
	Matches      *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bdaybot_runs_total",
			Help: "Pipeline runs by outcome.",
		}, []string{"status", "reason"}),
		SendAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bdaybot_send_attempts_total",
			Help: "Webhook HTTP attempts by result.",
		}, []string{"result"}),
		Matches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bdaybot_matches_total",
			Help: "Names matched per category across runs.",
		}, []string{"category"}),
	}
}

// ObserveAttempt classifies one HTTP attempt for the SendAttempts counter.
func (m *Metrics) ObserveAttempt(status int, err error) {
	if m == nil {
		return
	}
	result := "error"
	switch {
	case err != nil:
		result = "network_error"
	case status >= 200 && status < 300:
		result = "2xx"
	case status >= 400 && status < 500:
		result = "4xx"
	case status >= 500:
		result = "5xx"
	}
	m.SendAttempts.WithLabelValues(result).Inc()
}
