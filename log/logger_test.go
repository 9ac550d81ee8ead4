package log

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// memAppender captures log output for assertions.
type memAppender struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (a *memAppender) Write(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.Write(p)
}

func (a *memAppender) Refresh() {}

func (a *memAppender) String() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.String()
}

func newMemLogger(level Level) (*AppLogger, *memAppender) {
	logger := NewLogger(&LogCfg{
		LogLevel:        level,
		ConsoleAppender: false,
		FileAppender:    false,
	})
	mem := &memAppender{}
	logger.AddAppender(mem)
	return logger, mem
}

// TestConsoleAppender_WriteDirect uses ConsoleAppender.Write directly.
func TestConsoleAppender_WriteDirect(t *testing.T) {
	ca := NewConsoleAppender()
	msg := []byte("hello-console-direct\n")
	n, err := ca.Write(msg)
	if err != nil {
		t.Fatalf("ConsoleAppender.Write returned error: %v", err)
	}
	if n != len(msg) {
		t.Fatalf("ConsoleAppender.Write wrote %d bytes, want %d", n, len(msg))
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	logger, mem := newMemLogger(WarnLevel)

	if e := logger.Debug(); e != nil {
		t.Error("Debug() should return nil below the minimum level")
	}
	if e := logger.Info(); e != nil {
		t.Error("Info() should return nil below the minimum level")
	}

	// Nil events must be safe to use.
	logger.Info().Str("k", "v").Int("n", 1).Msg("dropped")

	logger.Warn().Msg("kept")
	if !strings.Contains(mem.String(), "kept") {
		t.Fatalf("warn message missing from output: %q", mem.String())
	}
	if strings.Contains(mem.String(), "dropped") {
		t.Fatalf("filtered message leaked into output: %q", mem.String())
	}
}

func TestLogEventFields(t *testing.T) {
	logger, mem := newMemLogger(DebugLevel)

	logger.Info().
		Str("component", "exporter").
		Int("requests", 3).
		Uint("port", 9100).
		Float64("duration", 0.002).
		Bool("cached", false).
		Msg("scrape served")

	out := mem.String()
	for _, want := range []string{
		`"level":"info"`,
		`"component":"exporter"`,
		`"requests":3`,
		`"port":9100`,
		`"duration":0.002`,
		`"cached":false`,
		`"msg":"scrape served"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %q", want, out)
		}
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("log line not terminated correctly: %q", out)
	}
}

func TestLogEventErr(t *testing.T) {
	logger, mem := newMemLogger(DebugLevel)

	logger.Error().Err(os.ErrNotExist).Msg("bind failed")
	if !strings.Contains(mem.String(), `"error":"file does not exist"`) {
		t.Errorf("error field missing: %q", mem.String())
	}

	// A nil error adds no field.
	logger.Error().Err(nil).Msg("no error")
	if strings.Count(mem.String(), `"error"`) != 1 {
		t.Errorf("nil error should not add a field: %q", mem.String())
	}
}

func TestLoggerSetLevel(t *testing.T) {
	logger, mem := newMemLogger(ErrorLevel)

	logger.Info().Msg("before")
	logger.SetLevel(DebugLevel)
	logger.Info().Msg("after")

	out := mem.String()
	if strings.Contains(out, "before") {
		t.Error("message logged below minimum level")
	}
	if !strings.Contains(out, "after") {
		t.Error("message missing after SetLevel")
	}
}

func TestLoggerFatalPanics(t *testing.T) {
	logger, _ := newMemLogger(DebugLevel)

	defer func() {
		if recover() == nil {
			t.Error("Fatal() should panic")
		}
	}()
	logger.Fatal().Msg("boom")
}

func TestLoggerOnConfigChanged(t *testing.T) {
	logger, _ := newMemLogger(InfoLevel)

	newCfg := &LogCfg{
		LogLevel:        DebugLevel,
		ConsoleAppender: true,
		FileAppender:    false,
	}
	if err := logger.OnConfigChanged("logger", newCfg, logger.GetCurrentConfig()); err != nil {
		t.Fatalf("OnConfigChanged failed: %v", err)
	}

	if logger.GetCurrentConfig() != newCfg {
		t.Error("current config was not replaced")
	}
	if !logger.checkLevel(DebugLevel) {
		t.Error("level change was not applied")
	}
	if len(logger.GetAppender()) != 1 {
		t.Errorf("appenders not rebuilt, got %d", len(logger.GetAppender()))
	}

	// Changes for other config names are ignored.
	if err := logger.OnConfigChanged("metrics", newCfg, nil); err != nil {
		t.Fatalf("unrelated config change should be ignored, got: %v", err)
	}
}

func TestFileAppenderWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.log")

	fa := NewFileAppender(&LogCfg{LogPath: path, FileSplitMB: 50})
	line := []byte(`{"level":"info","msg":"written"}` + "\n")
	if _, err := fa.Write(line); err != nil {
		t.Fatalf("FileAppender.Write failed: %v", err)
	}
	fa.Refresh()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file failed: %v", err)
	}
	if !strings.Contains(string(data), "written") {
		t.Fatalf("log file content unexpected: %q", string(data))
	}
}

func TestDefaultLogger(t *testing.T) {
	orig := _defaultLogger
	defer SetDefaultLogger(orig)

	logger, mem := newMemLogger(DebugLevel)
	SetDefaultLogger(logger)

	Info().Str("source", "default").Msg("package level")
	if !strings.Contains(mem.String(), `"source":"default"`) {
		t.Errorf("package-level logging missed the default logger: %q", mem.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"trace":   TraceLevel,
		"DEBUG":   DebugLevel,
		"info":    InfoLevel,
		"Warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
		"bogus":   InfoLevel,
	}
	for name, want := range cases {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}
