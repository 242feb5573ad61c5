// Package metrics exports poll-loop and view statistics to Prometheus.
package metrics

import (
	"strings"
	"time"

	"charging_console/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

// PromObs records tick outcomes and live-view gauges. It satisfies
// poller.Observer.
type PromObs struct {
	ticks     *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	liveViews prometheus.Gauge
	wsClients prometheus.Gauge
	readings  *prometheus.CounterVec
}

// NewPromObs registers the collectors with reg; nil means the default registerer.
func NewPromObs(reg prometheus.Registerer) *PromObs {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &PromObs{
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_poll_ticks_total",
			Help: "Poll ticks by view kind and outcome.",
		}, []string{"view", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_poll_fetch_duration_seconds",
			Help:    "Duration of a tick's complete fetch set.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"view"}),
		liveViews: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "console_live_views",
			Help: "Views with an active poll session.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "console_ws_clients",
			Help: "Connected WebSocket view streams.",
		}),
		readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_readings_fetch_total",
			Help: "Session readings fetches by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(p.ticks, p.latency, p.liveViews, p.wsClients, p.readings)
	return p
}

// viewKind collapses "charger:<id>" to "charger" to keep label cardinality flat.
func viewKind(view string) string {
	if i := strings.IndexByte(view, ':'); i >= 0 {
		return view[:i]
	}
	return view
}

func (p *PromObs) TickCommitted(view string, _ uint64, took time.Duration) {
	kind := viewKind(view)
	p.ticks.WithLabelValues(kind, models.OutcomeCommitted).Inc()
	p.latency.WithLabelValues(kind).Observe(took.Seconds())
}

func (p *PromObs) TickDiscarded(view string, _ uint64, took time.Duration, _ error) {
	kind := viewKind(view)
	p.ticks.WithLabelValues(kind, models.OutcomeDiscarded).Inc()
	p.latency.WithLabelValues(kind).Observe(took.Seconds())
}

func (p *PromObs) TickSkipped(view string, _ uint64) {
	p.ticks.WithLabelValues(viewKind(view), models.OutcomeSkipped).Inc()
}

func (p *PromObs) TickDropped(view string, _, _ uint64) {
	p.ticks.WithLabelValues(viewKind(view), models.OutcomeDropped).Inc()
}

func (p *PromObs) SetLiveViews(n int) {
	p.liveViews.Set(float64(n))
}

func (p *PromObs) WSConnected() { p.wsClients.Inc() }

func (p *PromObs) WSDisconnected() { p.wsClients.Dec() }

func (p *PromObs) ReadingsFetched(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.readings.WithLabelValues(result).Inc()
}
