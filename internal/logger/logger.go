package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation parameters for spec log sinks.
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Config describes log destinations for one launch spec. OutPath/ErrPath map
// the spec's out_file/error_file; MergedPath maps log_file and, when set,
// both streams go to the single merged sink. If explicit paths are empty and
// Dir is set, files default to Dir/<name>.out.log and Dir/<name>.err.log.
// Rotation parameters follow lumberjack semantics.
type Config struct {
	Dir        string `json:"dir,omitempty" toml:"dir" mapstructure:"dir"`
	OutPath    string `json:"out_file,omitempty" toml:"out_file" mapstructure:"out_file"`
	ErrPath    string `json:"error_file,omitempty" toml:"error_file" mapstructure:"error_file"`
	MergedPath string `json:"log_file,omitempty" toml:"log_file" mapstructure:"log_file"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups,omitempty" toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days,omitempty" toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `json:"compress,omitempty" toml:"compress" mapstructure:"compress"`
}

// Writers returns io.WriteClosers for stdout and stderr for the given
// instance name (e.g. "miner-1"). With MergedPath set, both returned writers
// are the same sink. A nil writer means the stream has no file destination.
func (c Config) Writers(name string) (io.WriteCloser, io.WriteCloser, error) {
	if c.MergedPath != "" {
		w := c.newSink(c.MergedPath)
		return w, w, nil
	}
	stdout := c.OutPath
	stderr := c.ErrPath
	if stdout == "" && c.Dir != "" {
		stdout = filepath.Join(c.Dir, fmt.Sprintf("%s.out.log", name))
	}
	if stderr == "" && c.Dir != "" {
		stderr = filepath.Join(c.Dir, fmt.Sprintf("%s.err.log", name))
	}
	var outW io.WriteCloser
	var errW io.WriteCloser
	if stdout != "" {
		outW = c.newSink(stdout)
	}
	if stderr != "" {
		errW = c.newSink(stderr)
	}
	return outW, errW, nil
}

func (c Config) newSink(path string) io.WriteCloser {
	return &lj.Logger{
		Filename:   path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// NewCLILogger returns a slog.Logger writing colored text to stderr.
// showTime maps the spec's `time` toggle onto the CLI output.
func NewCLILogger(level slog.Level, showTime bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if !showTime {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		}
	}
	return slog.New(NewColorTextHandler(os.Stderr, opts, showTime))
}
