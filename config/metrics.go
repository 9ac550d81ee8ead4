package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables forming the startup boundary contract of the metrics
// subsystem. They are read directly, without requiring a configuration file,
// so the host can decide whether to start the exposition server before any
// other part of this module is initialized.
const (
	// EnvMetricsEnabled toggles the exposition server.
	EnvMetricsEnabled = "MAALOGS_METRICS_ENABLED"
	// EnvMetricsPort selects the exposition server port.
	EnvMetricsPort = "MAALOGS_METRICS_PORT"
)

const (
	// DefaultMetricsPort is used when EnvMetricsPort is absent or unparseable.
	DefaultMetricsPort uint16 = 9100
)

// MetricsCfg configures the metrics exposition server. It is loadable through
// the ConfigManager (file "metrics.yaml" plus MAALOGS_METRICS_* overrides) but
// every field has a usable zero-adjacent default, so a file is optional.
type MetricsCfg struct {
	// Enabled toggles the exposition server as a whole.
	Enabled bool `mapstructure:"enabled"`

	// Port is the local TCP port the exposition server binds on 127.0.0.1.
	Port uint16 `mapstructure:"port"`

	// ThrottleQPS caps how many fresh exposition renders are produced per
	// second. Scrapes above the cap are served the last rendered body.
	// Zero disables throttling: every scrape renders a fresh snapshot.
	ThrottleQPS float64 `mapstructure:"throttleqps"`
}

// DefaultMetricsCfg returns the configuration used when no file and no
// environment overrides are present: server enabled on port 9100, no scrape
// throttling.
func DefaultMetricsCfg() *MetricsCfg {
	return &MetricsCfg{
		Enabled: MetricsEnabledFromEnv(),
		Port:    MetricsPortFromEnv(),
	}
}

// GetName implements the Config interface.
func (c *MetricsCfg) GetName() string {
	return "metrics"
}

// Validate implements the Config interface.
func (c *MetricsCfg) Validate() error {
	if c.ThrottleQPS < 0 {
		return fmt.Errorf("metrics config: throttleqps must not be negative, got %v", c.ThrottleQPS)
	}
	return nil
}

// MetricsEnabledFromEnv reports whether the exposition server should run,
// based solely on EnvMetricsEnabled. An absent variable means enabled; a
// present one is matched case-insensitively against "1", "true" and "yes",
// and anything else disables the server.
func MetricsEnabledFromEnv() bool {
	raw, ok := os.LookupEnv(EnvMetricsEnabled)
	if !ok {
		return true
	}

	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// MetricsPortFromEnv returns the exposition server port from EnvMetricsPort,
// falling back to DefaultMetricsPort when the variable is absent, not a
// number, or outside the uint16 range.
func MetricsPortFromEnv() uint16 {
	raw, ok := os.LookupEnv(EnvMetricsPort)
	if !ok {
		return DefaultMetricsPort
	}

	port, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return DefaultMetricsPort
	}
	return uint16(port)
}
