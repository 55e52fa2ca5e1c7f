package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// helper to close non-nil closers and ignore errors
func closeIf(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

func TestWriters_WithDirOnly(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Dir: dir}
	outW, errW, err := cfg.Writers("miner-0")
	if err != nil {
		t.Fatalf("Writers error: %v", err)
	}
	if outW == nil || errW == nil {
		t.Fatalf("expected both writers non-nil when Dir is set")
	}
	_, _ = outW.Write([]byte("hello-out\n"))
	_, _ = errW.Write([]byte("hello-err\n"))
	closeIf(outW)
	closeIf(errW)
	outPath := filepath.Join(dir, "miner-0.out.log")
	errPath := filepath.Join(dir, "miner-0.err.log")
	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("stdout log not created at %s: %v", outPath, err)
	}
	if _, err := os.Stat(errPath); err != nil {
		t.Fatalf("stderr log not created at %s: %v", errPath, err)
	}
}

func TestWriters_ExplicitPaths(t *testing.T) {
	dir := t.TempDir()
	sp := filepath.Join(dir, "m.out.log")
	ep := filepath.Join(dir, "m.err.log")
	cfg := Config{OutPath: sp, ErrPath: ep}
	outW, errW, err := cfg.Writers("ignored-name")
	if err != nil {
		t.Fatalf("Writers error: %v", err)
	}
	_, _ = outW.Write([]byte("x"))
	_, _ = errW.Write([]byte("y"))
	closeIf(outW)
	closeIf(errW)
	if _, err := os.Stat(sp); err != nil {
		t.Fatalf("out_file not created: %v", err)
	}
	if _, err := os.Stat(ep); err != nil {
		t.Fatalf("error_file not created: %v", err)
	}
}

func TestWriters_MergedSink(t *testing.T) {
	dir := t.TempDir()
	mp := filepath.Join(dir, "m.log")
	cfg := Config{MergedPath: mp}
	outW, errW, err := cfg.Writers("m")
	if err != nil {
		t.Fatalf("Writers error: %v", err)
	}
	if outW != errW {
		t.Fatalf("merged sink should hand out the same writer for both streams")
	}
	_, _ = outW.Write([]byte("both\n"))
	closeIf(outW)
	if _, err := os.Stat(mp); err != nil {
		t.Fatalf("log_file not created: %v", err)
	}
}

func TestWriters_NoDestination(t *testing.T) {
	cfg := Config{}
	outW, errW, err := cfg.Writers("m")
	if err != nil {
		t.Fatalf("Writers error: %v", err)
	}
	if outW != nil || errW != nil {
		t.Fatalf("no destination configured should yield nil writers")
	}
}

func TestWriters_RotationDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Dir: dir}
	outW, _, err := cfg.Writers("m")
	if err != nil {
		t.Fatalf("Writers error: %v", err)
	}
	l, ok := outW.(*lj.Logger)
	if !ok {
		t.Fatalf("writer type %T", outW)
	}
	if l.MaxSize != DefaultMaxSizeMB || l.MaxBackups != DefaultMaxBackups || l.MaxAge != DefaultMaxAgeDays {
		t.Fatalf("rotation defaults not applied: %+v", l)
	}
	closeIf(outW)
}

func TestNewCLILogger(t *testing.T) {
	lg := NewCLILogger(slog.LevelDebug, false)
	if lg == nil {
		t.Fatalf("nil logger")
	}
	lg.Debug("just exercising the handler", "k", "v")
}
