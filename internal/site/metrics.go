package site

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/attanavaid/portfolio/internal/contact"
	"github.com/attanavaid/portfolio/internal/theme"
)

// Metrics are registered on their own registry so several servers can run
// in one process.
type Metrics struct {
	registry *prometheus.Registry

	liveSessions    prometheus.Gauge
	contactMessages *prometheus.CounterVec
	themeSelections *prometheus.CounterVec
	pageRenders     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		liveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_live_sessions",
			Help: "Number of open live page sessions",
		}),
		contactMessages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_contact_messages_total",
			Help: "Contact form submissions by delivery channel and outcome",
		}, []string{"channel", "outcome"}),
		themeSelections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_theme_selections_total",
			Help: "Explicit theme selections by preference",
		}, []string{"preference"}),
		pageRenders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_page_renders_total",
			Help: "Server-rendered pages by resolved theme",
		}, []string{"theme"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) SessionOpened() { m.liveSessions.Inc() }
func (m *Metrics) SessionClosed() { m.liveSessions.Dec() }

func (m *Metrics) ThemeSelected(p theme.Preference) {
	m.themeSelections.WithLabelValues(string(p)).Inc()
}

// ObserveSubmission records one contact attempt.
func (m *Metrics) ObserveSubmission(ch contact.Channel, err error) {
	outcome := "sent"
	switch {
	case errors.Is(err, contact.ErrInvalidMessage):
		outcome = "invalid"
	case errors.Is(err, contact.ErrRateLimited):
		outcome = "rate_limited"
	case err != nil:
		outcome = "failed"
	}
	if ch == "" {
		ch = "none"
	}
	m.contactMessages.WithLabelValues(string(ch), outcome).Inc()
}

func (m *Metrics) pageRendered(r theme.Resolved) {
	m.pageRenders.WithLabelValues(string(r)).Inc()
}
