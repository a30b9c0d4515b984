package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRPC(t *testing.T) {
	m := New()

	m.ObserveRPC("GetDocList", nil)
	m.ObserveRPC("OpenDoc", nil)
	m.ObserveRPC("OpenDoc", errors.New("boom"))

	if got := testutil.ToFloat64(m.rpcRequests.WithLabelValues("OpenDoc", "ok")); got != 1 {
		t.Errorf("OpenDoc ok = %g, want 1", got)
	}
	if got := testutil.ToFloat64(m.rpcRequests.WithLabelValues("OpenDoc", "error")); got != 1 {
		t.Errorf("OpenDoc error = %g, want 1", got)
	}
}

func TestObserveReclaim(t *testing.T) {
	m := New()

	m.ObserveReclaim(true)
	m.ObserveReclaim(false)
	m.ObserveReclaim(true)

	if got := testutil.ToFloat64(m.reclaimAttempts); got != 3 {
		t.Errorf("attempts = %g, want 3", got)
	}
	if got := testutil.ToFloat64(m.reclaimFailures); got != 1 {
		t.Errorf("failures = %g, want 1", got)
	}
}

// TestNilMetrics: a nil *Metrics must be a no-op so callers can leave
// metrics disabled without guarding every call site.
func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRPC("GetDocList", nil)
	m.ObserveReclaim(true)
	m.SetCandidateMB(12.5)
}
