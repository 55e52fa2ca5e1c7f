// Package render turns validated launch specs into the artifacts external
// supervisors actually consume.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/minerops/launchspec/internal/spec"
)

// PM2 renders specs as an ecosystem.config.json document: {"apps": [...]}.
// Durations are emitted as bare milliseconds and sizes as suffix strings,
// the supervisor's native spelling for both.
func PM2(specs []spec.Spec) ([]byte, error) {
	apps := make([]map[string]any, 0, len(specs))
	for i := range specs {
		s := specs[i].Clone()
		s.Normalize()
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("render pm2: %w", err)
		}
		apps = append(apps, pm2App(&s))
	}
	doc := map[string]any{"apps": apps}
	return json.MarshalIndent(doc, "", "  ")
}

func pm2App(s *spec.Spec) map[string]any {
	app := map[string]any{
		"name":        s.Name,
		"script":      s.Script,
		"autorestart": s.AutoRestart(),
	}
	if s.Interpreter != "" {
		app["interpreter"] = s.Interpreter
	}
	if len(s.Args) > 0 {
		app["args"] = s.Args
	}
	if s.Cwd != "" {
		app["cwd"] = s.Cwd
	}
	if len(s.Env) > 0 {
		app["env"] = s.Env
	}
	if s.EnvFile != "" {
		app["env_file"] = s.EnvFile
	}
	if s.Instances > 1 {
		app["instances"] = s.Instances
	}
	if s.ExecMode != "" && s.ExecMode != spec.ExecModeFork {
		app["exec_mode"] = s.ExecMode
	}
	if s.Watch {
		app["watch"] = true
	}
	if s.MaxMemoryRestart > 0 {
		app["max_memory_restart"] = s.MaxMemoryRestart.String()
	}
	if s.RestartDelay > 0 {
		app["restart_delay"] = s.RestartDelay.Milliseconds()
	}
	if s.ExpBackoffRestartDelay > 0 {
		app["exp_backoff_restart_delay"] = s.ExpBackoffRestartDelay.Milliseconds()
	}
	if s.MaxRestarts > 0 {
		app["max_restarts"] = s.MaxRestarts
	}
	if s.MinUptime > 0 {
		app["min_uptime"] = s.MinUptime.Milliseconds()
	}
	if s.KillTimeout > 0 {
		app["kill_timeout"] = s.KillTimeout.Milliseconds()
	}
	if s.ListenTimeout > 0 {
		app["listen_timeout"] = s.ListenTimeout.Milliseconds()
	}
	if s.WaitReady {
		app["wait_ready"] = true
	}
	if s.OutFile != "" {
		app["out_file"] = s.OutFile
	}
	if s.ErrorFile != "" {
		app["error_file"] = s.ErrorFile
	}
	if s.LogFile != "" {
		app["log_file"] = s.LogFile
	}
	if s.PIDFile != "" {
		app["pid_file"] = s.PIDFile
	}
	if s.Time {
		app["time"] = true
	}
	if s.MergeLogs {
		app["merge_logs"] = true
	}
	return app
}
