// Package metrics exposes the application counters to Prometheus.
package metrics

import (
	"context"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "appamine"

// ViewCounter reports how many views of one kind are open.
type ViewCounter interface {
	Count(ctx context.Context) int
}

// Recorder implements the report and schedule recorders. A nil *Recorder records nothing.
type Recorder struct {
	reg          *prom.Registry
	exports      *prom.CounterVec
	sessionSaves *prom.CounterVec
	sweptViews   prom.Counter
}

func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	rec := &Recorder{
		reg: reg,
		exports: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "report_exports_total",
			Help:      "Report exports by format and outcome",
		}, []string{"format", "outcome"}),
		sessionSaves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_session_saves_total",
			Help:      "Session editor saves by conflict policy and outcome",
		}, []string{"policy", "outcome"}),
		sweptViews: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "views_expired_total",
			Help:      "Idle views dropped by the janitor",
		}),
	}
	reg.MustRegister(rec.exports, rec.sessionSaves, rec.sweptViews)
	reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	return rec
}

// WatchViews registers a gauge reporting the open views of the given kind.
func (rec *Recorder) WatchViews(kind string, counter ViewCounter) {
	if rec == nil {
		return
	}
	rec.reg.MustRegister(prom.NewGaugeFunc(prom.GaugeOpts{
		Namespace:   namespace,
		Name:        "open_views",
		Help:        "Views currently held in memory",
		ConstLabels: prom.Labels{"kind": kind},
	}, func() float64 {
		return float64(counter.Count(context.Background()))
	}))
}

func (rec *Recorder) IncExport(format string, success bool) {
	if rec == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	rec.exports.WithLabelValues(format, outcome).Inc()
}

func (rec *Recorder) IncSave(policy, outcome string) {
	if rec == nil {
		return
	}
	rec.sessionSaves.WithLabelValues(policy, outcome).Inc()
}

func (rec *Recorder) AddExpired(n int) {
	if rec == nil || n <= 0 {
		return
	}
	rec.sweptViews.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (rec *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(rec.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
