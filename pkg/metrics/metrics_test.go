package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var pb dto.Metric
	if err := c.Write(&pb); err != nil {
		t.Fatalf("reading counter: %v", err)
	}
	return pb.GetCounter().GetValue()
}

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLine(StatusOK, 3)
	m.ObserveLine(StatusOK, 2)
	m.ObserveLine(StatusMalformed, 0)
	m.ObserveSinkWrite("file", nil)
	m.ObserveSinkWrite("file", errors.New("disk full"))
	m.ObserveRun(250 * time.Millisecond)

	if got := counterValue(t, m.LinesTotal.WithLabelValues(StatusOK)); got != 2 {
		t.Errorf("ok lines = %v", got)
	}
	if got := counterValue(t, m.LinesTotal.WithLabelValues(StatusMalformed)); got != 1 {
		t.Errorf("malformed lines = %v", got)
	}
	if got := counterValue(t, m.TermsTotal); got != 5 {
		t.Errorf("terms = %v", got)
	}
	if got := counterValue(t, m.SinkWritesTotal.WithLabelValues("file", "error")); got != 1 {
		t.Errorf("sink errors = %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveLine(StatusOK, 1)
	m.ObserveSinkWrite("file", nil)
	m.ObserveRun(time.Second)
}
