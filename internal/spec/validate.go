package spec

import (
	"fmt"
	"sort"
	"strings"
)

// Violation is a single schema violation found during validation.
type Violation struct {
	Field  string `json:"field"`
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason"`
}

func (v Violation) String() string {
	if v.Value == "" {
		return fmt.Sprintf("%s: %s", v.Field, v.Reason)
	}
	return fmt.Sprintf("%s: %s (got %q)", v.Field, v.Reason, v.Value)
}

// ValidationError aggregates every violation found in one spec so callers can
// report all problems in a single pass instead of fixing them one at a time.
type ValidationError struct {
	Name       string      `json:"name"`
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	name := e.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(&b, "spec %s: %d violation(s)", name, len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("\n  - ")
		b.WriteString(v.String())
	}
	return b.String()
}

// IsSafeName validates a spec name for use as a supervisor process name and
// in log file names. Allowed characters: A-Z a-z 0-9 . _ - with no ".." and
// no path separators.
func IsSafeName(s string) bool {
	if s == "" {
		return false
	}
	if strings.Contains(s, "..") {
		return false
	}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-' {
			continue
		}
		return false
	}
	return !strings.ContainsAny(s, "/\\")
}

// Validate checks every field against its domain and returns a
// *ValidationError listing all violations, or nil when the spec is valid.
// It never mutates the spec; call Normalize separately for defaults.
func (s *Spec) Validate() error {
	var vs []Violation

	if s.Name == "" {
		vs = append(vs, Violation{Field: "name", Reason: "required"})
	} else if !IsSafeName(s.Name) {
		vs = append(vs, Violation{Field: "name", Value: s.Name, Reason: "allowed characters are [A-Za-z0-9._-] with no '..'"})
	}
	if s.Script == "" {
		vs = append(vs, Violation{Field: "script", Reason: "required"})
	}
	if s.Instances < 0 {
		vs = append(vs, Violation{Field: "instances", Value: fmt.Sprint(s.Instances), Reason: "must be >= 1"})
	}
	switch s.ExecMode {
	case "", ExecModeFork, ExecModeCluster:
	default:
		vs = append(vs, Violation{Field: "exec_mode", Value: s.ExecMode, Reason: `must be "fork" or "cluster"`})
	}
	if s.MaxRestarts < 0 {
		vs = append(vs, Violation{Field: "max_restarts", Value: fmt.Sprint(s.MaxRestarts), Reason: "must be >= 0"})
	}
	for field, d := range map[string]Duration{
		"restart_delay":             s.RestartDelay,
		"exp_backoff_restart_delay": s.ExpBackoffRestartDelay,
		"kill_timeout":              s.KillTimeout,
		"listen_timeout":            s.ListenTimeout,
		"min_uptime":                s.MinUptime,
	} {
		if d < 0 {
			vs = append(vs, Violation{Field: field, Value: d.String(), Reason: "must be a non-negative duration"})
		}
	}
	if s.MaxMemoryRestart < 0 {
		vs = append(vs, Violation{Field: "max_memory_restart", Value: s.MaxMemoryRestart.String(), Reason: "must be a non-negative size"})
	}
	for k := range s.Env {
		if strings.TrimSpace(k) == "" {
			vs = append(vs, Violation{Field: "env", Reason: "environment keys must be non-empty"})
			break
		}
	}
	if s.LogFile != "" && (s.OutFile != "" || s.ErrorFile != "") {
		vs = append(vs, Violation{Field: "log_file", Value: s.LogFile, Reason: "log_file merges stdout/stderr and conflicts with out_file/error_file"})
	}

	if len(vs) == 0 {
		return nil
	}
	sortViolations(vs)
	return &ValidationError{Name: s.Name, Violations: vs}
}

// sortViolations keeps the report order stable for tests and API consumers;
// the duration checks above iterate a map.
func sortViolations(vs []Violation) {
	sort.Slice(vs, func(i, j int) bool { return vs[i].Field < vs[j].Field })
}
