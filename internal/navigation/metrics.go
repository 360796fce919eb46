package navigation

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes recorded by Metrics.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeDiscarded = "discarded"
)

// Metrics counts taxonomy fetches by outcome. A nil *Metrics records nothing.
type Metrics struct {
	fetches *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. Registering twice on the same
// registry reuses the existing counter.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "taxonomy_fetch_total",
		Help:      "Taxonomy fetches started by navigation views, by outcome.",
	}, []string{"outcome"})

	if reg != nil {
		if err := reg.Register(fetches); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, err
			}
			existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, err
			}
			fetches = existing
		}
	}
	return &Metrics{fetches: fetches}, nil
}

// FetchCounter exposes the counter for tests and custom exporters.
func (m *Metrics) FetchCounter() *prometheus.CounterVec {
	if m == nil {
		return nil
	}
	return m.fetches
}

func (m *Metrics) observeFetch(outcome string) {
	if m == nil || m.fetches == nil {
		return
	}
	m.fetches.WithLabelValues(outcome).Inc()
}
