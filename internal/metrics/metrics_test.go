package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterIdempotentAndCountersWork(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	// idempotent: calling again should be no-op
	if err := Register(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}

	IncValidation(true)
	IncValidation(false)
	IncRegistration("miner")
	IncDeletion("miner")
	IncRender("pm2")
	SetStoredSpecs(4)
	IncHistorySendFailure()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	wantNames := map[string]bool{
		"launchspec_spec_validations_total":      false,
		"launchspec_registry_registrations_total": false,
		"launchspec_registry_deletions_total":    false,
		"launchspec_render_renders_total":        false,
		"launchspec_registry_stored_specs":       false,
		"launchspec_history_send_failures_total": false,
	}
	for _, mf := range mfs {
		n := mf.GetName()
		if _, ok := wantNames[n]; ok {
			wantNames[n] = true
			if len(mf.GetMetric()) == 0 {
				t.Fatalf("metric %s has no samples", n)
			}
		}
	}
	for n, ok := range wantNames {
		if !ok {
			t.Fatalf("expected to find metric %s", n)
		}
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	_ = Register(prometheus.DefaultRegisterer)
	IncValidation(true)

	srv := httptest.NewServer(Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "launchspec_spec_validations_total") {
		t.Fatalf("metrics output missing launchspec counters")
	}
}
