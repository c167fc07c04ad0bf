package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second Register: %v", err)
	}

	SearchFallbackTotal.WithLabelValues("index_unavailable").Inc()
	if n := testutil.CollectAndCount(SearchFallbackTotal); n < 1 {
		t.Errorf("fallback series = %d, want at least 1", n)
	}
}

func TestRegister_Conflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	clash := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bookcafe",
		Name:      "search_requests_total",
		Help:      "Different type, same name",
	})
	reg.MustRegister(clash)

	if err := Register(reg); err == nil {
		t.Fatal("expected error for a conflicting collector")
	}
}
