package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func resetLog(t *testing.T) {
	t.Cleanup(func() { Log = zap.NewNop() })
}

func TestConsoleLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			resetLog(t)
			var buf bytes.Buffer
			if err := Init(Options{Level: tt.level, Console: &buf}); err != nil {
				t.Fatalf("Init failed: %v", err)
			}

			Log.Debug("reading header")
			Log.Info("mesh parsed")
			Log.Warn("split uv")
			Error("write failed")
			Sync()

			out := buf.String()
			for _, exp := range tt.expected {
				if !strings.Contains(out, exp) {
					t.Errorf("expected %s in output:\n%s", exp, out)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(out, exc) {
					t.Errorf("unexpected %s in output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	resetLog(t)
	if err := Init(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if err != nil {
				t.Fatalf("ParseLevel(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRotation(t *testing.T) {
	cfg := Rotation("/tmp/r3dtool.log")

	if cfg.Path != "/tmp/r3dtool.log" {
		t.Errorf("expected path /tmp/r3dtool.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 10 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 30 {
		t.Errorf("unexpected limits: %+v", cfg)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}

func TestFileRotates(t *testing.T) {
	resetLog(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "r3d.log")

	// 1MB is the smallest size lumberjack accepts
	cfg := RotateConfig{Path: path, MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 1}
	if err := Init(Options{Level: "info", File: cfg}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	// Each JSON line is ~300 bytes, so 15000 lines pass 1MB.
	payload := strings.Repeat("v", 200)
	for i := 0; i < 15000; i++ {
		Log.Info("vertex block", zap.Int("index", i), zap.String("data", payload))
	}
	Sync()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading log dir: %v", err)
	}
	rotated := 0
	for _, e := range entries {
		// Rotated files are named r3d-<timestamp>.log
		if e.Name() != "r3d.log" && strings.HasPrefix(e.Name(), "r3d-20") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Errorf("no rotated files in %v", entries)
	}
}

func TestNamedLoggerWritesComponent(t *testing.T) {
	resetLog(t)
	path := filepath.Join(t.TempDir(), "named.log")

	if err := Init(Options{Level: "info", File: RotateConfig{Path: path, MaxSizeMB: 1}}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	Named("export").Info("wrote mesh")
	Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(content), `"logger":"export"`) {
		t.Errorf("expected logger name in output, got %s", content)
	}
}
