package template

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/minerops/launchspec/internal/spec"
)

// TemplateType represents the type of template to generate
type TemplateType string

const (
	TypeMiner      TemplateType = "miner"
	TypeWorker     TemplateType = "worker"
	TypeBackground TemplateType = "background"
	TypeWeb        TemplateType = "web"
	TypeWebapp     TemplateType = "webapp"
	TypeAPI        TemplateType = "api"
	TypeService    TemplateType = "service"
	TypeCron       TemplateType = "cron"
	TypeScheduled  TemplateType = "scheduled"
	TypeSimple     TemplateType = "simple"
	TypeBasic      TemplateType = "basic"
)

// Generator produces starter launch specs for common workload shapes. The
// output is a valid spec meant to be edited, not deployed as-is.
type Generator struct{}

// NewGenerator creates a new template generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate creates a launch spec template based on the specified type and name
func (g *Generator) Generate(templateType TemplateType, name string) (*spec.Spec, error) {
	switch templateType {
	case TypeMiner:
		return g.generateMinerTemplate(name), nil
	case TypeWorker, TypeBackground:
		return g.generateWorkerTemplate(name), nil
	case TypeWeb, TypeWebapp:
		return g.generateWebTemplate(name), nil
	case TypeAPI, TypeService:
		return g.generateAPITemplate(name), nil
	case TypeCron, TypeScheduled:
		return g.generateCronTemplate(name), nil
	case TypeSimple, TypeBasic:
		return g.generateSimpleTemplate(name), nil
	default:
		return nil, fmt.Errorf("unknown template type: %s (supported: miner, worker, web, api, cron, simple)", templateType)
	}
}

// GenerateJSON creates a JSON representation of the template
func (g *Generator) GenerateJSON(templateType TemplateType, name string) ([]byte, error) {
	s, err := g.Generate(templateType, name)
	if err != nil {
		return nil, err
	}
	jsonData, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template: %w", err)
	}
	return jsonData, nil
}

// GetSupportedTypes returns a list of all supported template types
func (g *Generator) GetSupportedTypes() []string {
	return []string{
		string(TypeMiner),
		string(TypeWorker),
		string(TypeWeb),
		string(TypeAPI),
		string(TypeCron),
		string(TypeSimple),
	}
}

func boolPtr(b bool) *bool { return &b }

// Helper functions to create specific templates

func (g *Generator) generateMinerTemplate(name string) *spec.Spec {
	return &spec.Spec{
		Name:        name,
		Script:      "miners/" + name + ".py",
		Interpreter: "python3",
		Cwd:         "/opt/mining",
		Instances:   1,
		Autorestart: boolPtr(true),
		Env: map[string]string{
			"PYTHONUNBUFFERED": "1",
		},
		MaxMemoryRestart:       spec.Size(300 << 20),
		RestartDelay:           spec.Duration(3 * time.Second),
		ExpBackoffRestartDelay: spec.Duration(100 * time.Millisecond),
		MaxRestarts:            10,
		MinUptime:              spec.Duration(5 * time.Second),
		KillTimeout:            spec.Duration(5 * time.Second),
		OutFile:                "/var/log/" + name + "/out.log",
		ErrorFile:              "/var/log/" + name + "/err.log",
		Time:                   true,
	}
}

func (g *Generator) generateWorkerTemplate(name string) *spec.Spec {
	return &spec.Spec{
		Name:        name,
		Script:      "./worker",
		Cwd:         "/app",
		Autorestart: boolPtr(true),
		Env: map[string]string{
			"WORKER_THREADS": "4",
			"LOG_LEVEL":      "info",
		},
		RestartDelay: spec.Duration(time.Second),
		KillTimeout:  spec.Duration(10 * time.Second),
		LogFile:      "/var/log/" + name + ".log",
	}
}

func (g *Generator) generateWebTemplate(name string) *spec.Spec {
	return &spec.Spec{
		Name:        name,
		Script:      "server.py",
		Interpreter: "python3",
		Cwd:         "/app",
		Autorestart: boolPtr(true),
		Env: map[string]string{
			"PORT": "8000",
			"ENV":  "production",
		},
		WaitReady:     true,
		ListenTimeout: spec.Duration(8 * time.Second),
		OutFile:       "/var/log/" + name + "/out.log",
		ErrorFile:     "/var/log/" + name + "/err.log",
	}
}

func (g *Generator) generateAPITemplate(name string) *spec.Spec {
	return &spec.Spec{
		Name:        name,
		Script:      "./api-server",
		Cwd:         "/app",
		Instances:   2,
		ExecMode:    spec.ExecModeCluster,
		Autorestart: boolPtr(true),
		Env: map[string]string{
			"PORT":      "3000",
			"LOG_LEVEL": "info",
		},
		WaitReady:     true,
		ListenTimeout: spec.Duration(8 * time.Second),
		MergeLogs:     true,
		LogFile:       "/var/log/" + name + ".log",
	}
}

func (g *Generator) generateCronTemplate(name string) *spec.Spec {
	return &spec.Spec{
		Name:        name,
		Script:      "./scheduled-task",
		Cwd:         "/app",
		Autorestart: boolPtr(false),
		Env: map[string]string{
			"SCHEDULE":  "daily",
			"LOG_LEVEL": "info",
		},
		LogFile: "/var/log/" + name + ".log",
	}
}

func (g *Generator) generateSimpleTemplate(name string) *spec.Spec {
	return &spec.Spec{
		Name:   name,
		Script: "./" + name,
	}
}
