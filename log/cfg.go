package log

// LogCfg configures the telemetry logger. The defaults favor console output
// so the library produces diagnostics out of the box when embedded into a
// desktop host process, with file output as an opt-in for long-running
// deployments.
type LogCfg struct {
	// LogPath specifies the target log file path for file-based logging.
	// Supports relative and absolute paths.
	LogPath string `mapstructure:"path"`

	// LogLevel defines the minimum log level for filtering log entries.
	// Supports hot-reload without restart for dynamic adjustment.
	LogLevel Level `mapstructure:"level"`

	// FileSplitMB determines the file rotation threshold in megabytes.
	// When the log file exceeds this size, rotation creates a new file.
	FileSplitMB int `mapstructure:"splitmb"`

	// FileAppender enables file-based logging output.
	FileAppender bool `mapstructure:"fileAppender"`

	// ConsoleAppender enables console (stderr) logging output.
	ConsoleAppender bool `mapstructure:"consoleAppender"`

	// EnabledCallerInfo adds file:line of the logging call site to each event.
	EnabledCallerInfo bool `mapstructure:"enabledCallerInfo"`

	// CallerSkip specifies additional stack frames to skip when capturing
	// caller information. Useful for wrapper functions.
	CallerSkip int `mapstructure:"callerSkip"`
}

// GetName implements the config.Config interface.
func (cfg *LogCfg) GetName() string {
	return "logger"
}

// Validate implements the config.Config interface.
func (cfg *LogCfg) Validate() error {
	return nil
}

var _defaultCfg = &LogCfg{
	LogPath:         "./telemetry.log",
	LogLevel:        InfoLevel,
	FileSplitMB:     50,
	CallerSkip:      1,
	ConsoleAppender: true,
}

func getDefaultCfg() *LogCfg {
	return _defaultCfg
}
