package render

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/minerops/launchspec/internal/spec"
)

func minerSpec() spec.Spec {
	return spec.Spec{
		Name:                   "miner",
		Script:                 "miners/miner.py",
		Interpreter:            "python3",
		Cwd:                    "/opt/miner",
		Env:                    map[string]string{"NETUID": "5", "WALLET_NAME": "default"},
		Instances:              1,
		MaxMemoryRestart:       300 << 20,
		RestartDelay:           spec.Duration(3 * time.Second),
		ExpBackoffRestartDelay: spec.Duration(100 * time.Millisecond),
		MaxRestarts:            10,
		MinUptime:              spec.Duration(30 * time.Second),
		KillTimeout:            spec.Duration(5 * time.Second),
		ListenTimeout:          spec.Duration(10 * time.Second),
		WaitReady:              true,
		ErrorFile:              "/var/log/miner.err.log",
		OutFile:                "/var/log/miner.out.log",
		Time:                   true,
	}
}

func TestPM2Render(t *testing.T) {
	out, err := PM2([]spec.Spec{minerSpec()})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var doc struct {
		Apps []map[string]any `json:"apps"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output not JSON: %v\n%s", err, out)
	}
	if len(doc.Apps) != 1 {
		t.Fatalf("apps = %d", len(doc.Apps))
	}
	app := doc.Apps[0]
	if app["name"] != "miner" || app["script"] != "miners/miner.py" {
		t.Fatalf("app: %v", app)
	}
	if app["restart_delay"] != float64(3000) {
		t.Fatalf("restart_delay = %v, want ms number", app["restart_delay"])
	}
	if app["max_memory_restart"] != "300M" {
		t.Fatalf("max_memory_restart = %v", app["max_memory_restart"])
	}
	if app["autorestart"] != true {
		t.Fatalf("autorestart default missing: %v", app)
	}
	if _, ok := app["instances"]; ok {
		t.Fatalf("single instance should omit instances key")
	}
}

func TestPM2RejectsInvalid(t *testing.T) {
	if _, err := PM2([]spec.Spec{{Name: "x"}}); err == nil {
		t.Fatalf("spec without script must not render")
	}
}

func TestSupervisordRender(t *testing.T) {
	s := minerSpec()
	s.Instances = 2
	out, err := Supervisord([]spec.Spec{s})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out)
	for _, want := range []string{
		"[program:miner]",
		"command=python3 miners/miner.py",
		"directory=/opt/miner",
		`environment=NETUID="5",WALLET_NAME="default"`,
		"autorestart=true",
		"startsecs=30",
		"startretries=10",
		"stopwaitsecs=5",
		"numprocs=2",
		"process_name=%(program_name)s-%(process_num)d",
		"stdout_logfile=/var/log/miner.out.log",
		"stderr_logfile=/var/log/miner.err.log",
		"; launchspec: max_memory_restart=300M",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in:\n%s", want, text)
		}
	}
}

func TestSupervisordMergedLog(t *testing.T) {
	s := spec.Spec{Name: "m", Script: "m.py", LogFile: "/var/log/m.log"}
	out, err := Supervisord([]spec.Spec{s})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "stdout_logfile=/var/log/m.log") || !strings.Contains(text, "redirect_stderr=true") {
		t.Fatalf("merged sink mapping wrong:\n%s", text)
	}
}

func TestSupervisordMultipleSpecs(t *testing.T) {
	out, err := Supervisord([]spec.Spec{
		{Name: "a", Script: "a.py"},
		{Name: "b", Script: "b.py"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out)
	if strings.Index(text, "[program:a]") > strings.Index(text, "[program:b]") {
		t.Fatalf("order not preserved:\n%s", text)
	}
}
