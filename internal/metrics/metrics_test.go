package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterIsIdempotent(t *testing.T) {
	r := prometheus.NewRegistry()
	if err := Register(r); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := Register(r); err != nil {
		t.Fatalf("second register: %v", err)
	}
}

func TestSetStateIsExclusive(t *testing.T) {
	SetState("ready")
	if testutil.ToFloat64(cliState.WithLabelValues("ready")) != 1 {
		t.Fatalf("ready gauge not set")
	}
	for _, s := range []string{"starting", "error", "stopped"} {
		if testutil.ToFloat64(cliState.WithLabelValues(s)) != 0 {
			t.Fatalf("state %s not cleared", s)
		}
	}
	SetState("stopped")
	if testutil.ToFloat64(cliState.WithLabelValues("ready")) != 0 {
		t.Fatalf("ready gauge not cleared after transition")
	}
	if testutil.ToFloat64(cliState.WithLabelValues("stopped")) != 1 {
		t.Fatalf("stopped gauge not set")
	}
}

func TestCountersMove(t *testing.T) {
	before := testutil.ToFloat64(cliStarts)
	IncStart()
	if testutil.ToFloat64(cliStarts) != before+1 {
		t.Fatalf("starts counter did not increment")
	}
	beforeErr := testutil.ToFloat64(cliErrors.WithLabelValues(ReasonTimeout))
	IncError(ReasonTimeout)
	if testutil.ToFloat64(cliErrors.WithLabelValues(ReasonTimeout)) != beforeErr+1 {
		t.Fatalf("errors counter did not increment")
	}
}
