package client

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/minerops/launchspec/internal/server"
	"github.com/minerops/launchspec/internal/spec"
	"github.com/minerops/launchspec/internal/store"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	st, err := store.NewFromDSN(":memory:")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	ts := httptest.NewServer(server.NewRouter(st, nil, nil, "/api").Handler())
	t.Cleanup(ts.Close)
	return New(Config{BaseURL: ts.URL + "/api", Timeout: 5 * time.Second})
}

func minerSpec() spec.Spec {
	return spec.Spec{
		Name:         "miner",
		Script:       "miners/miner.py",
		Interpreter:  "python3",
		Cwd:          "/opt/mining",
		RestartDelay: spec.Duration(3 * time.Second),
	}
}

func TestClientIsReachable(t *testing.T) {
	c := newTestClient(t)
	if !c.IsReachable(context.Background()) {
		t.Fatal("expected registry to be reachable")
	}

	down := New(Config{BaseURL: "http://127.0.0.1:1/api", Timeout: time.Second})
	if down.IsReachable(context.Background()) {
		t.Fatal("expected unreachable registry")
	}
}

func TestClientValidate(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	res, err := c.Validate(ctx, minerSpec())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !res.OK || len(res.Violations) != 0 {
		t.Fatalf("expected valid, got %+v", res)
	}

	res, err = c.Validate(ctx, spec.Spec{Name: "broken"})
	if err != nil {
		t.Fatalf("validate invalid: %v", err)
	}
	if res.OK || len(res.Violations) == 0 {
		t.Fatalf("expected violations, got %+v", res)
	}
}

func TestClientRegistryRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	rev, err := c.Register(ctx, minerSpec())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if rev == "" {
		t.Fatal("expected revision id")
	}

	rec, err := c.Get(ctx, "miner")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Spec.Script != "miners/miner.py" {
		t.Fatalf("unexpected spec: %+v", rec.Spec)
	}

	recs, err := c.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}

	// update appends a revision
	s := minerSpec()
	s.Instances = 4
	if _, err := c.Register(ctx, s); err != nil {
		t.Fatalf("update: %v", err)
	}
	revs, err := c.Revisions(ctx, "miner")
	if err != nil {
		t.Fatalf("revisions: %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(revs))
	}

	if err := c.Unregister(ctx, "miner"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if _, err := c.Get(ctx, "miner"); err == nil {
		t.Fatal("expected error for deleted spec")
	}
}

func TestClientRender(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Register(ctx, minerSpec()); err != nil {
		t.Fatalf("register: %v", err)
	}

	out, err := c.Render(ctx, "miner", "")
	if err != nil {
		t.Fatalf("render default: %v", err)
	}
	var doc struct {
		Apps []map[string]any `json:"apps"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decode pm2 doc: %v", err)
	}
	if len(doc.Apps) != 1 {
		t.Fatalf("expected 1 app, got %d", len(doc.Apps))
	}

	out, err = c.Render(ctx, "miner", "supervisord")
	if err != nil {
		t.Fatalf("render supervisord: %v", err)
	}
	if !strings.Contains(string(out), "[program:miner]") {
		t.Fatalf("missing program section: %s", out)
	}

	if _, err := c.Render(ctx, "miner", "systemd"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := c.Render(ctx, "ghost", ""); err == nil {
		t.Fatal("expected error for missing spec")
	}
}
