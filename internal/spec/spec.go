package spec

import (
	"fmt"
	"path/filepath"
)

const (
	// ExecModeFork runs a single OS process per instance.
	ExecModeFork = "fork"
	// ExecModeCluster asks the supervisor to run instances through its
	// cluster/load-balancing mode, when it has one.
	ExecModeCluster = "cluster"

	DefaultInstances = 1
)

// Spec is a process launch specification: the declarative record handed to an
// external process supervisor describing how to launch, monitor, and restart
// one worker process. Field names follow the supervisor's spelling so a spec
// serialized to JSON is directly consumable.
//
// All duration fields accept either bare integers (milliseconds) or duration
// strings ("1500ms", "2s") in config files and JSON. MaxMemoryRestart accepts
// size strings like "300M" or bare byte counts.
type Spec struct {
	Name        string            `json:"name" toml:"name" mapstructure:"name"`
	Script      string            `json:"script" toml:"script" mapstructure:"script"`
	Interpreter string            `json:"interpreter,omitempty" toml:"interpreter" mapstructure:"interpreter"`
	Args        []string          `json:"args,omitempty" toml:"args" mapstructure:"args"`
	Cwd         string            `json:"cwd,omitempty" toml:"cwd" mapstructure:"cwd"`
	Env         map[string]string `json:"env,omitempty" toml:"env" mapstructure:"env"`
	EnvFile     string            `json:"env_file,omitempty" toml:"env_file" mapstructure:"env_file"`

	Instances int    `json:"instances,omitempty" toml:"instances" mapstructure:"instances"`
	ExecMode  string `json:"exec_mode,omitempty" toml:"exec_mode" mapstructure:"exec_mode"`

	// Restart policy inputs. Enforcement belongs to the supervisor; these are
	// only carried, validated, and rendered.
	Autorestart            *bool    `json:"autorestart,omitempty" toml:"autorestart" mapstructure:"autorestart"`
	Watch                  bool     `json:"watch,omitempty" toml:"watch" mapstructure:"watch"`
	MaxMemoryRestart       Size     `json:"max_memory_restart,omitempty" toml:"max_memory_restart" mapstructure:"max_memory_restart"`
	RestartDelay           Duration `json:"restart_delay,omitempty" toml:"restart_delay" mapstructure:"restart_delay"`
	ExpBackoffRestartDelay Duration `json:"exp_backoff_restart_delay,omitempty" toml:"exp_backoff_restart_delay" mapstructure:"exp_backoff_restart_delay"`
	MaxRestarts            int      `json:"max_restarts,omitempty" toml:"max_restarts" mapstructure:"max_restarts"`
	MinUptime              Duration `json:"min_uptime,omitempty" toml:"min_uptime" mapstructure:"min_uptime"`

	// Shutdown and readiness timing.
	KillTimeout   Duration `json:"kill_timeout,omitempty" toml:"kill_timeout" mapstructure:"kill_timeout"`
	ListenTimeout Duration `json:"listen_timeout,omitempty" toml:"listen_timeout" mapstructure:"listen_timeout"`
	WaitReady     bool     `json:"wait_ready,omitempty" toml:"wait_ready" mapstructure:"wait_ready"`

	// Log sinks. LogFile merges stdout and stderr into one file; when set it
	// takes precedence over OutFile/ErrorFile.
	OutFile   string `json:"out_file,omitempty" toml:"out_file" mapstructure:"out_file"`
	ErrorFile string `json:"error_file,omitempty" toml:"error_file" mapstructure:"error_file"`
	LogFile   string `json:"log_file,omitempty" toml:"log_file" mapstructure:"log_file"`
	PIDFile   string `json:"pid_file,omitempty" toml:"pid_file" mapstructure:"pid_file"`
	Time      bool   `json:"time,omitempty" toml:"time" mapstructure:"time"`
	MergeLogs bool   `json:"merge_logs,omitempty" toml:"merge_logs" mapstructure:"merge_logs"`
}

// AutoRestart reports the effective restart-on-exit toggle. Supervisors
// default it to true, so an unset field means true.
func (s *Spec) AutoRestart() bool {
	if s.Autorestart == nil {
		return true
	}
	return *s.Autorestart
}

// Normalize fills defaults in place. It never overrides an explicit value.
func (s *Spec) Normalize() {
	if s.Instances <= 0 {
		s.Instances = DefaultInstances
	}
	if s.ExecMode == "" {
		s.ExecMode = ExecModeFork
	}
}

// ResolveEnvFile resolves a relative env_file against baseDir, typically the
// directory of the config file the spec was loaded from.
func (s *Spec) ResolveEnvFile(baseDir string) {
	if s.EnvFile == "" || filepath.IsAbs(s.EnvFile) || baseDir == "" {
		return
	}
	s.EnvFile = filepath.Join(baseDir, s.EnvFile)
}

// InstanceNames returns the per-replica names the supervisor will use:
// the bare name for a single instance, "<name>-i" otherwise.
func (s *Spec) InstanceNames() []string {
	n := s.Instances
	if n <= 0 {
		n = DefaultInstances
	}
	if n == 1 {
		return []string{s.Name}
	}
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		names = append(names, fmt.Sprintf("%s-%d", s.Name, i))
	}
	return names
}

// Clone returns a deep copy. Specs are treated as immutable once loaded;
// callers that need to mutate should clone first.
func (s *Spec) Clone() Spec {
	out := *s
	if s.Args != nil {
		out.Args = append([]string(nil), s.Args...)
	}
	if s.Env != nil {
		out.Env = make(map[string]string, len(s.Env))
		for k, v := range s.Env {
			out.Env[k] = v
		}
	}
	if s.Autorestart != nil {
		v := *s.Autorestart
		out.Autorestart = &v
	}
	return out
}
