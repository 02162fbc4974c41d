package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels.
const (
	opStore    = "store"
	opRetrieve = "retrieve"
	opUpdate   = "update"
	opRemove   = "remove"
	opIsKeySet = "is_key_set"
)

// Metrics counts credential operations by outcome. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
}

// NewMetrics creates the credential counters and registers them with reg.
// A nil reg leaves the counters unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dashkeys",
				Name:      "credential_operations_total",
				Help:      "Total count of credential store operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
	}
	if reg != nil {
		if err := reg.Register(m.operations); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrShape):
		return "shape"
	case errors.Is(err, ErrAuthenticationFailure):
		return "auth_failure"
	case errors.Is(err, ErrStorage):
		return "storage"
	default:
		return "error"
	}
}
