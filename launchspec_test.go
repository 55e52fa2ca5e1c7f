package launchspec

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadSpecAndRender(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "miner.json")
	doc := `{
		"name": "miner",
		"script": "miners/miner.py",
		"interpreter": "python3",
		"cwd": "/opt/mining",
		"instances": 2,
		"restart_delay": 3000,
		"max_memory_restart": "300M"
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := LoadSpec(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Name != "miner" || s.Instances != 2 {
		t.Fatalf("unexpected spec: %+v", s)
	}

	out, err := RenderPM2([]Spec{s})
	if err != nil {
		t.Fatalf("render pm2: %v", err)
	}
	var pm2 struct {
		Apps []map[string]any `json:"apps"`
	}
	if err := json.Unmarshal(out, &pm2); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(pm2.Apps) != 1 || pm2.Apps[0]["restart_delay"] != float64(3000) {
		t.Fatalf("unexpected pm2 doc: %+v", pm2)
	}

	ini, err := RenderSupervisord([]Spec{s})
	if err != nil {
		t.Fatalf("render supervisord: %v", err)
	}
	if !strings.Contains(string(ini), "[program:miner]") {
		t.Fatalf("missing program section: %s", ini)
	}
}

func TestParseHelpers(t *testing.T) {
	d, err := ParseDuration("1500")
	if err != nil {
		t.Fatalf("parse duration: %v", err)
	}
	if d.Milliseconds() != 1500 {
		t.Fatalf("unexpected duration: %v", d)
	}
	sz, err := ParseSize("1G")
	if err != nil {
		t.Fatalf("parse size: %v", err)
	}
	if int64(sz) != 1<<30 {
		t.Fatalf("unexpected size: %d", sz)
	}
}

func TestStoreFacade(t *testing.T) {
	st, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	defer func() { _ = st.Close() }()

	s := Spec{Name: "miner", Script: "miners/miner.py"}
	rev, err := st.Put(context.Background(), s)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if rev.ID == "" {
		t.Fatal("expected revision id")
	}
	rec, err := st.Get(context.Background(), "miner")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Spec.Script != "miners/miner.py" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestRegisterMetricsDefault(t *testing.T) {
	if err := RegisterMetricsDefault(); err != nil {
		t.Fatalf("register metrics: %v", err)
	}
	// idempotent
	if err := RegisterMetricsDefault(); err != nil {
		t.Fatalf("re-register metrics: %v", err)
	}
}
