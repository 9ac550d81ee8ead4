// Package metrics implements the in-process metrics subsystem of the MaaLogs
// host application: a process-wide registry that instrumented commands report
// into, and a best-effort HTTP exporter that serves the registry state in the
// Prometheus text exposition format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"google.golang.org/protobuf/proto"
)

// Metric family names. Fixed at registry construction; the scrape contract of
// the host application depends on them.
const (
	CommandTotalName    = "tauri_command_total"
	CommandDurationName = "tauri_command_duration_seconds"
	AppUpName           = "tauri_app_up"
)

// Label names partitioning the command families.
const (
	LabelCommand = "command"
	LabelStatus  = "status"
)

// Registry accumulates command metrics and provides a consistent read
// snapshot for export. All methods are safe for concurrent use; Record is
// wait-free apart from the client library's short internal critical sections.
//
// A Registry owns its own prometheus registry rather than the process global
// one, so the exporter serves exactly the families below and tests can run
// against isolated instances.
type Registry struct {
	registry        *prometheus.Registry
	commandTotal    *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	appUp           prometheus.Gauge
}

// NewRegistry constructs a registry with the three command metric families
// and the up gauge already set to 1. Registration of the static families can
// only fail on a malformed definition, which is a programming error; it
// panics instead of returning an error.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewPedanticRegistry(),
	}

	r.commandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: CommandTotalName,
			Help: "Total number of completed commands by command name and status.",
		},
		[]string{LabelCommand, LabelStatus},
	)
	r.commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: CommandDurationName,
			Help: "Command execution duration in seconds.",
			// Default ladder, 5ms up to 10s. Command handlers are expected to
			// complete well inside it.
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelCommand},
	)
	r.appUp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: AppUpName,
		Help: "Whether the host application is up.",
	})

	r.registry.MustRegister(r.commandTotal, r.commandDuration, r.appUp)
	r.appUp.Set(1)

	return r
}

// Record reports one completed command execution: the (command, status)
// counter is incremented and the duration histogram for command observes
// seconds.
//
// Record never fails observably. Instrumentation must not break the
// instrumented operation, so any failure to resolve a label combination
// degrades to a no-op.
func (r *Registry) Record(command, status string, seconds float64) {
	if counter, err := r.commandTotal.GetMetricWithLabelValues(command, status); err == nil {
		counter.Inc()
	}
	if histogram, err := r.commandDuration.GetMetricWithLabelValues(command); err == nil {
		histogram.Observe(seconds)
	}
}

// Snapshot returns a deep copy of the current state of all families. The
// caller owns the result; later Record calls do not mutate it.
func (r *Registry) Snapshot() ([]*dto.MetricFamily, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}

	out := make([]*dto.MetricFamily, 0, len(families))
	for _, family := range families {
		out = append(out, proto.Clone(family).(*dto.MetricFamily))
	}
	return out, nil
}

// Gatherer exposes the underlying prometheus gatherer, e.g. for tests using
// the client library's test utilities.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
