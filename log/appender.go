package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// LogAppender outputs finalized log lines to a destination such as the
// console or a file. Appenders must be safe for concurrent Write calls.
type LogAppender interface {
	Write(p []byte) (int, error)
	// Refresh re-applies external state, e.g. reopens files after rotation
	// or a configuration change.
	Refresh()
}

// ConsoleAppender writes log lines to stderr.
type ConsoleAppender struct {
	mu sync.Mutex
}

// NewConsoleAppender creates a console appender.
func NewConsoleAppender() *ConsoleAppender {
	return &ConsoleAppender{}
}

// Write outputs one log line to stderr.
func (a *ConsoleAppender) Write(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return os.Stderr.Write(p)
}

// Refresh is a no-op for the console.
func (a *ConsoleAppender) Refresh() {}

// FileAppender writes log lines to a file and rotates it by size. Rotation
// renames the active file with a numeric suffix and reopens a fresh one.
type FileAppender struct {
	mu       sync.Mutex
	path     string
	splitMB  int
	file     *os.File
	written  int64
	rotation int
}

// NewFileAppender creates a file appender from the logger configuration.
// The file is opened lazily on first write so constructing a logger never
// fails on filesystem state.
func NewFileAppender(cfg *LogCfg) *FileAppender {
	return &FileAppender{
		path:    cfg.LogPath,
		splitMB: cfg.FileSplitMB,
	}
}

// Write outputs one log line to the active file, rotating first when the
// size threshold is exceeded.
func (a *FileAppender) Write(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureOpen(); err != nil {
		return 0, err
	}

	if a.splitMB > 0 && a.written+int64(len(p)) > int64(a.splitMB)*1024*1024 {
		if err := a.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := a.file.Write(p)
	a.written += int64(n)
	return n, err
}

// Refresh closes the active file so the next write reopens it. Used after
// configuration changes and external log rotation.
func (a *FileAppender) Refresh() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file != nil {
		_ = a.file.Close()
		a.file = nil
		a.written = 0
	}
}

func (a *FileAppender) ensureOpen() error {
	if a.file != nil {
		return nil
	}

	if dir := filepath.Dir(a.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}

	a.file = f
	a.written = info.Size()
	return nil
}

func (a *FileAppender) rotate() error {
	if a.file != nil {
		_ = a.file.Close()
		a.file = nil
	}

	a.rotation++
	rotated := fmt.Sprintf("%s.%d", a.path, a.rotation)
	if err := os.Rename(a.path, rotated); err != nil {
		return err
	}

	a.written = 0
	return a.ensureOpen()
}
