package template

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/minerops/launchspec/internal/spec"
)

func TestGenerator_Generate(t *testing.T) {
	generator := NewGenerator()

	tests := []struct {
		name         string
		templateType TemplateType
		specName     string
		expectError  bool
		validate     func(*testing.T, *spec.Spec)
	}{
		{
			name:         "miner_template",
			templateType: TypeMiner,
			specName:     "miner",
			validate: func(t *testing.T, s *spec.Spec) {
				if s.Name != "miner" {
					t.Errorf("expected name 'miner', got '%s'", s.Name)
				}
				if s.Script != "miners/miner.py" {
					t.Errorf("unexpected script: %s", s.Script)
				}
				if s.Interpreter != "python3" {
					t.Errorf("unexpected interpreter: %s", s.Interpreter)
				}
				if s.MaxMemoryRestart != spec.Size(300<<20) {
					t.Errorf("unexpected memory limit: %v", s.MaxMemoryRestart)
				}
				if !s.AutoRestart() {
					t.Error("expected autorestart to be true")
				}
			},
		},
		{
			name:         "worker_template",
			templateType: TypeWorker,
			specName:     "data-worker",
			validate: func(t *testing.T, s *spec.Spec) {
				if s.Script != "./worker" {
					t.Errorf("unexpected script: %s", s.Script)
				}
				if len(s.Env) != 2 {
					t.Errorf("expected 2 env vars, got %d", len(s.Env))
				}
			},
		},
		{
			name:         "api_template",
			templateType: TypeAPI,
			specName:     "user-service",
			validate: func(t *testing.T, s *spec.Spec) {
				if s.ExecMode != spec.ExecModeCluster {
					t.Errorf("expected cluster mode, got %s", s.ExecMode)
				}
				if s.Instances != 2 {
					t.Errorf("expected 2 instances, got %d", s.Instances)
				}
				if !s.WaitReady {
					t.Error("expected wait_ready")
				}
			},
		},
		{
			name:         "cron_template",
			templateType: TypeCron,
			specName:     "nightly-job",
			validate: func(t *testing.T, s *spec.Spec) {
				if s.AutoRestart() {
					t.Error("expected autorestart to be false for cron")
				}
			},
		},
		{
			name:         "simple_template",
			templateType: TypeSimple,
			specName:     "hello",
			validate: func(t *testing.T, s *spec.Spec) {
				if s.Script != "./hello" {
					t.Errorf("unexpected script: %s", s.Script)
				}
			},
		},
		{
			name:         "unknown_type",
			templateType: TemplateType("mainframe"),
			specName:     "x",
			expectError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := generator.Generate(tt.templateType, tt.specName)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if err := s.Validate(); err != nil {
				t.Fatalf("generated template must validate: %v", err)
			}
			tt.validate(t, s)
		})
	}
}

func TestGenerator_TemplateAliases(t *testing.T) {
	generator := NewGenerator()
	pairs := [][2]TemplateType{
		{TypeWorker, TypeBackground},
		{TypeWeb, TypeWebapp},
		{TypeAPI, TypeService},
		{TypeCron, TypeScheduled},
		{TypeSimple, TypeBasic},
	}
	for _, p := range pairs {
		a, err := generator.GenerateJSON(p[0], "x")
		if err != nil {
			t.Fatalf("%s: %v", p[0], err)
		}
		b, err := generator.GenerateJSON(p[1], "x")
		if err != nil {
			t.Fatalf("%s: %v", p[1], err)
		}
		if string(a) != string(b) {
			t.Errorf("alias %s should match %s", p[1], p[0])
		}
	}
}

func TestGenerator_GenerateJSON(t *testing.T) {
	generator := NewGenerator()

	data, err := generator.GenerateJSON(TypeMiner, "miner")
	if err != nil {
		t.Fatalf("generate json: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if m["name"] != "miner" {
		t.Errorf("unexpected name: %v", m["name"])
	}
	// durations serialize as bare milliseconds
	if m["restart_delay"] != float64(3000) {
		t.Errorf("unexpected restart_delay: %v", m["restart_delay"])
	}
	if m["max_memory_restart"] != "300M" {
		t.Errorf("unexpected max_memory_restart: %v", m["max_memory_restart"])
	}
}

func TestGenerator_GetSupportedTypes(t *testing.T) {
	types := NewGenerator().GetSupportedTypes()
	if len(types) != 6 {
		t.Fatalf("expected 6 supported types, got %d", len(types))
	}
	joined := strings.Join(types, ",")
	for _, want := range []string{"miner", "worker", "web", "api", "cron", "simple"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing supported type %s", want)
		}
	}
}
