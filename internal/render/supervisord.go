package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/minerops/launchspec/internal/spec"
)

// Supervisord renders specs as supervisord [program:x] sections. The two
// schemas do not line up one-to-one; fields with no supervisord equivalent
// are emitted as comments so nothing is silently dropped.
func Supervisord(specs []spec.Spec) ([]byte, error) {
	var b strings.Builder
	for i := range specs {
		s := specs[i].Clone()
		s.Normalize()
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("render supervisord: %w", err)
		}
		if i > 0 {
			b.WriteString("\n")
		}
		writeProgram(&b, &s)
	}
	return []byte(b.String()), nil
}

func writeProgram(b *strings.Builder, s *spec.Spec) {
	fmt.Fprintf(b, "[program:%s]\n", s.Name)
	fmt.Fprintf(b, "command=%s\n", command(s))
	if s.Cwd != "" {
		fmt.Fprintf(b, "directory=%s\n", s.Cwd)
	}
	if len(s.Env) > 0 {
		fmt.Fprintf(b, "environment=%s\n", environment(s.Env))
	}
	fmt.Fprintf(b, "autorestart=%t\n", s.AutoRestart())
	if s.MinUptime > 0 {
		fmt.Fprintf(b, "startsecs=%d\n", seconds(s.MinUptime))
	}
	if s.MaxRestarts > 0 {
		fmt.Fprintf(b, "startretries=%d\n", s.MaxRestarts)
	}
	if s.KillTimeout > 0 {
		fmt.Fprintf(b, "stopwaitsecs=%d\n", seconds(s.KillTimeout))
	}
	if s.Instances > 1 {
		fmt.Fprintf(b, "numprocs=%d\n", s.Instances)
		b.WriteString("process_name=%(program_name)s-%(process_num)d\n")
	}
	switch {
	case s.LogFile != "":
		fmt.Fprintf(b, "stdout_logfile=%s\n", s.LogFile)
		b.WriteString("redirect_stderr=true\n")
	default:
		if s.OutFile != "" {
			fmt.Fprintf(b, "stdout_logfile=%s\n", s.OutFile)
		}
		if s.ErrorFile != "" {
			fmt.Fprintf(b, "stderr_logfile=%s\n", s.ErrorFile)
		}
	}
	for _, c := range unmapped(s) {
		fmt.Fprintf(b, "; launchspec: %s\n", c)
	}
}

// command joins interpreter, script, and args into the supervisord command line.
func command(s *spec.Spec) string {
	parts := make([]string, 0, 2+len(s.Args))
	if s.Interpreter != "" {
		parts = append(parts, s.Interpreter)
	}
	parts = append(parts, s.Script)
	parts = append(parts, s.Args...)
	return strings.Join(parts, " ")
}

// environment renders KEY="VAL",... with deterministic key order.
func environment(env map[string]string) string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, env[k]))
	}
	return strings.Join(pairs, ",")
}

func unmapped(s *spec.Spec) []string {
	var out []string
	if s.RestartDelay > 0 {
		out = append(out, fmt.Sprintf("restart_delay=%dms has no supervisord equivalent", s.RestartDelay.Milliseconds()))
	}
	if s.ExpBackoffRestartDelay > 0 {
		out = append(out, fmt.Sprintf("exp_backoff_restart_delay=%dms has no supervisord equivalent", s.ExpBackoffRestartDelay.Milliseconds()))
	}
	if s.MaxMemoryRestart > 0 {
		out = append(out, fmt.Sprintf("max_memory_restart=%s has no supervisord equivalent", s.MaxMemoryRestart))
	}
	if s.Watch {
		out = append(out, "watch=true has no supervisord equivalent")
	}
	if s.WaitReady {
		out = append(out, "wait_ready=true has no supervisord equivalent")
	}
	if s.ListenTimeout > 0 {
		out = append(out, fmt.Sprintf("listen_timeout=%dms has no supervisord equivalent", s.ListenTimeout.Milliseconds()))
	}
	if s.EnvFile != "" {
		out = append(out, fmt.Sprintf("env_file=%s must be expanded before rendering", s.EnvFile))
	}
	return out
}

// seconds rounds up so short windows are never truncated to zero.
func seconds(d spec.Duration) int64 {
	return int64(math.Ceil(d.Std().Seconds()))
}
