package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()

	m, err := NewMetrics(reg)
	require.NoError(t, err)
	require.NotNil(t, m)

	_, err = NewMetrics(reg)
	assert.Error(t, err, "registering the same collector twice must fail")
}

func TestMetrics_Observe(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)

	m.observe(opStore, nil)
	m.observe(opStore, nil)
	m.observe(opRetrieve, fmt.Errorf("%w: x", ErrStorage))
	m.observe(opRetrieve, ErrAuthenticationFailure)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues(opStore, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(opRetrieve, "storage")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(opRetrieve, "auth_failure")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observe(opStore, nil) })
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "empty_input", outcome(ErrEmptyInput))
	assert.Equal(t, "shape", outcome(ErrShape))
	assert.Equal(t, "error", outcome(errors.New("x")))
}

func counterValue(t *testing.T, m *Metrics, operation, result string) float64 {
	t.Helper()
	return testutil.ToFloat64(m.operations.WithLabelValues(operation, result))
}
