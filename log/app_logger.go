package log

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maalogs/telemetry/config"
)

// AppLogger is a thread-safe structured logger with configurable appenders.
// The logging path is lock-free: level filtering uses an atomic load and
// events are pooled to minimize garbage collection pressure, so logging from
// instrumented operations stays cheap.
//
// Example usage:
//
//	logger := NewLogger(&LogCfg{
//	    LogLevel:        InfoLevel,
//	    ConsoleAppender: true,
//	})
//	logger.Info().Str("component", "exporter").Uint("port", 9100).Msg("server started")
type AppLogger struct {
	appenders         []LogAppender
	minLevel          atomic.Uint32
	callerSkip        int
	eventPool         *sync.Pool
	callerCache       sync.Map
	enabledCallerInfo bool
	configMutex       sync.RWMutex
	currentConfig     *LogCfg
}

// NewLogger creates a new AppLogger instance with the provided configuration.
// If cfg is nil, default configuration values are used.
func NewLogger(cfg *LogCfg) *AppLogger {
	if cfg == nil {
		cfg = getDefaultCfg()
	}

	logger := &AppLogger{
		callerSkip:        cfg.CallerSkip,
		enabledCallerInfo: cfg.EnabledCallerInfo,
		currentConfig:     cfg,
	}
	logger.minLevel.Store(uint32(cfg.LogLevel))

	logger.eventPool = &sync.Pool{
		New: func() any {
			return newEvent(logger)
		},
	}

	if cfg.FileAppender {
		logger.AddAppender(NewFileAppender(cfg))
	}
	if cfg.ConsoleAppender {
		logger.AddAppender(NewConsoleAppender())
	}

	return logger
}

// NewLoggerWithConfigManager creates a new AppLogger registered for
// hot-reload: when the "logger" configuration is reloaded, the logger adjusts
// its level and appenders without a restart.
func NewLoggerWithConfigManager(cfg *LogCfg, configManager config.ConfigManager) *AppLogger {
	logger := NewLogger(cfg)
	if configManager != nil {
		configManager.AddChangeListener(logger)
	}
	return logger
}

// OnConfigChanged implements config.ConfigChangeListener for hot-reload.
func (x *AppLogger) OnConfigChanged(configName string, newConfig, oldConfig config.Config) error {
	if configName != "logger" {
		return nil
	}

	newLogCfg, ok := newConfig.(*LogCfg)
	if !ok {
		return fmt.Errorf("unexpected config type %T for logger", newConfig)
	}

	x.updateConfig(newLogCfg)
	return nil
}

// updateConfig applies a new configuration and rebuilds the appender set.
func (x *AppLogger) updateConfig(newCfg *LogCfg) {
	x.configMutex.Lock()
	defer x.configMutex.Unlock()

	x.minLevel.Store(uint32(newCfg.LogLevel))
	x.callerSkip = newCfg.CallerSkip
	x.enabledCallerInfo = newCfg.EnabledCallerInfo
	x.currentConfig = newCfg

	x.appenders = nil
	if newCfg.FileAppender {
		x.AddAppender(NewFileAppender(newCfg))
	}
	if newCfg.ConsoleAppender {
		x.AddAppender(NewConsoleAppender())
	}
}

// GetCurrentConfig returns the current logger configuration.
func (x *AppLogger) GetCurrentConfig() *LogCfg {
	x.configMutex.RLock()
	defer x.configMutex.RUnlock()
	return x.currentConfig
}

// SetLevel changes the minimum level at runtime.
func (x *AppLogger) SetLevel(level Level) {
	x.minLevel.Store(uint32(level))
}

func (x *AppLogger) checkLevel(level Level) bool {
	return Level(x.minLevel.Load()) <= level
}

// AddAppender adds a new log appender to the logger. Multiple appenders can
// be added, sending each event to every destination.
func (x *AppLogger) AddAppender(appender LogAppender) {
	x.appenders = append(x.appenders, appender)
}

// GetAppender returns the appenders currently registered with the logger.
func (x *AppLogger) GetAppender() []LogAppender {
	return x.appenders
}

// Refresh triggers a refresh operation on all registered appenders.
func (x *AppLogger) Refresh() {
	for _, appender := range x.appenders {
		appender.Refresh()
	}
}

func (x *AppLogger) newEvent() *LogEvent {
	e := x.eventPool.Get().(*LogEvent)
	e.Reset()
	return e
}

// OnEventEnd writes a finalized event to all appenders and returns it to the
// pool. Fatal events panic after being written.
func (x *AppLogger) OnEventEnd(e *LogEvent) {
	for _, appender := range x.appenders {
		_, _ = appender.Write(e.buf.Bytes())
	}

	level := e.level
	x.eventPool.Put(e)

	if level == FatalLevel {
		panic("fatal log event")
	}
}

// Debug creates a new debug-level log event, or returns nil when debug
// logging is disabled.
func (x *AppLogger) Debug() *LogEvent {
	return x.log(DebugLevel)
}

// Info creates a new info-level log event.
func (x *AppLogger) Info() *LogEvent {
	return x.log(InfoLevel)
}

// Warn creates a new warning-level log event.
func (x *AppLogger) Warn() *LogEvent {
	return x.log(WarnLevel)
}

// Error creates a new error-level log event.
func (x *AppLogger) Error() *LogEvent {
	return x.log(ErrorLevel)
}

// Fatal creates a new fatal-level log event. After the event is written the
// logger panics.
func (x *AppLogger) Fatal() *LogEvent {
	return x.log(FatalLevel)
}

// log prepares a new event with the common fields (timestamp, level and
// optionally the caller) or returns nil when the level is filtered out.
func (x *AppLogger) log(level Level) *LogEvent {
	if !x.checkLevel(level) {
		return nil
	}

	e := x.newEvent()
	e.level = level

	t := time.Now()
	e.Time("time", &t)
	e.Str("level", level.String())

	if x.enabledCallerInfo {
		e.Str("caller", x.getCallerInfo())
	}

	return e
}

// getCallerInfo resolves the file:line of the logging call site, caching by
// program counter to avoid repeated symbolization.
func (x *AppLogger) getCallerInfo() string {
	pc, file, line, ok := runtime.Caller(3 + x.callerSkip)
	if !ok {
		return "unknown"
	}

	if cached, found := x.callerCache.Load(pc); found {
		return cached.(string)
	}

	// Trim to the last two path elements.
	if lastSlash := strings.LastIndexByte(file, '/'); lastSlash > 0 {
		if secondLastSlash := strings.LastIndexByte(file[:lastSlash], '/'); secondLastSlash >= 0 {
			file = file[secondLastSlash+1:]
		}
	}

	info := fmt.Sprintf("%s:%d", file, line)
	x.callerCache.Store(pc, info)
	return info
}
