package metrics

import (
	"fmt"
	"time"

	"github.com/nomis52/signup/activity"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels the result of an API call.
type Outcome string

const (
	// OutcomeSuccess is a 2xx answer.
	OutcomeSuccess Outcome = "success"
	// OutcomeRejected is a non-2xx answer from the API.
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed is a transport or decoding failure.
	OutcomeFailed Outcome = "failed"
)

// BoardMetrics records board activity. A nil *BoardMetrics records nothing.
type BoardMetrics struct {
	fetches      CounterVec
	signups      CounterVec
	unregisters  CounterVec
	participants GaugeVec
	spotsLeft    GaugeVec
	lastRefresh  Gauge
}

// NewBoardMetrics registers the board metrics with r.
func NewBoardMetrics(r Registry) (*BoardMetrics, error) {
	var (
		m   BoardMetrics
		err error
	)
	outcome := []string{"outcome"}

	if m.fetches, err = r.NewCounterVec(prometheus.CounterOpts{
		Name: "activity_fetches_total",
		Help: "Activity list fetches by outcome.",
	}, outcome); err != nil {
		return nil, fmt.Errorf("creating fetch counter: %w", err)
	}
	if m.signups, err = r.NewCounterVec(prometheus.CounterOpts{
		Name: "signups_total",
		Help: "Signup requests by outcome.",
	}, outcome); err != nil {
		return nil, fmt.Errorf("creating signup counter: %w", err)
	}
	if m.unregisters, err = r.NewCounterVec(prometheus.CounterOpts{
		Name: "unregisters_total",
		Help: "Unregister requests by outcome.",
	}, outcome); err != nil {
		return nil, fmt.Errorf("creating unregister counter: %w", err)
	}
	if m.participants, err = r.NewGaugeVec(prometheus.GaugeOpts{
		Name: "activity_participants",
		Help: "Registered participants per activity at the last refresh.",
	}, []string{"activity"}); err != nil {
		return nil, fmt.Errorf("creating participants gauge: %w", err)
	}
	if m.spotsLeft, err = r.NewGaugeVec(prometheus.GaugeOpts{
		Name: "activity_spots_left",
		Help: "Remaining capacity per activity at the last refresh.",
	}, []string{"activity"}); err != nil {
		return nil, fmt.Errorf("creating spots gauge: %w", err)
	}
	if m.lastRefresh, err = r.NewGauge(prometheus.GaugeOpts{
		Name: "activity_last_refresh_timestamp_seconds",
		Help: "Unix time of the last successful activity fetch.",
	}); err != nil {
		return nil, fmt.Errorf("creating refresh gauge: %w", err)
	}
	return &m, nil
}

// ObserveFetch counts an activity list fetch.
func (m *BoardMetrics) ObserveFetch(o Outcome) {
	if m == nil {
		return
	}
	m.fetches.With(prometheus.Labels{"outcome": string(o)}).Inc()
}

// ObserveSignup counts a signup request.
func (m *BoardMetrics) ObserveSignup(o Outcome) {
	if m == nil {
		return
	}
	m.signups.With(prometheus.Labels{"outcome": string(o)}).Inc()
}

// ObserveUnregister counts an unregister request.
func (m *BoardMetrics) ObserveUnregister(o Outcome) {
	if m == nil {
		return
	}
	m.unregisters.With(prometheus.Labels{"outcome": string(o)}).Inc()
}

// ObserveCatalog republishes the per-activity gauges from a fresh catalog.
func (m *BoardMetrics) ObserveCatalog(c activity.Catalog) {
	if m == nil {
		return
	}
	m.participants.Reset()
	m.spotsLeft.Reset()
	for _, a := range c {
		labels := prometheus.Labels{"activity": a.Name}
		m.participants.With(labels).Set(float64(len(a.Participants)))
		m.spotsLeft.With(labels).Set(float64(a.SpotsLeft()))
	}
	m.lastRefresh.Set(float64(time.Now().Unix()))
}
