// Package telemetry wires the MaaLogs metrics subsystem into a host process:
// it reads the boundary configuration, starts the exposition server when
// enabled, and optionally announces the endpoint to Consul.
//
// The host only needs two calls: telemetry.Start once during initialization,
// and metrics.Record (or an instrumentation.Timer) on each completed command.
package telemetry

import (
	"github.com/maalogs/telemetry/config"
	"github.com/maalogs/telemetry/discovery"
	"github.com/maalogs/telemetry/log"
	"github.com/maalogs/telemetry/metrics"
)

// Runtime is the handle returned by Start. Closing it stops the exposition
// server and withdraws the Consul announcement; neither is required before
// process exit.
type Runtime struct {
	exporter  *metrics.Exporter
	announcer *discovery.Announcer

	// Enabled reports whether the exposition server was started.
	Enabled bool
	// Port is the configured exposition port, meaningful when Enabled.
	Port uint16
}

// Start configures the subsystem from the process environment
// (MAALOGS_METRICS_ENABLED, MAALOGS_METRICS_PORT) and starts the exposition
// server when enabled. It never fails: every degradation is logged and
// swallowed, because observability must not prevent the host from running.
func Start() *Runtime {
	return StartWithConfig(config.DefaultMetricsCfg(), nil)
}

// StartWithConfig starts the subsystem from explicit configuration. discCfg
// may be nil to skip Consul announcement.
func StartWithConfig(cfg *config.MetricsCfg, discCfg *discovery.Cfg) *Runtime {
	rt := &Runtime{}

	if cfg == nil {
		cfg = config.DefaultMetricsCfg()
	}
	rt.Port = cfg.Port

	if !cfg.Enabled {
		log.Info().Msg("metrics exposition disabled by configuration")
		return rt
	}

	rt.Enabled = true
	rt.exporter = metrics.NewExporter(metrics.GetInstance(), cfg)
	rt.exporter.Start(cfg.Port)
	rt.announcer = discovery.Announce(discCfg, cfg.Port)

	return rt
}

// Close stops the exposition server and deregisters the Consul announcement.
func (rt *Runtime) Close() error {
	if rt.announcer != nil {
		if err := rt.announcer.Deregister(); err != nil {
			log.Warn().Err(err).Msg("consul deregistration failed")
		}
		rt.announcer = nil
	}

	if rt.exporter != nil {
		err := rt.exporter.Close()
		rt.exporter = nil
		return err
	}
	return nil
}
