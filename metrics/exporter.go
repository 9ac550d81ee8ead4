package metrics

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/prometheus/common/expfmt"
	"golang.org/x/time/rate"

	"github.com/maalogs/telemetry/config"
	"github.com/maalogs/telemetry/log"
)

// MetricsPath is the only path the exporter answers with metric data.
const MetricsPath = "/metrics"

// contentType is the Prometheus text exposition content type served on
// successful scrapes.
const contentType = "text/plain; version=0.0.4; charset=utf-8"

// Exporter serves a Registry over plain HTTP on the loopback interface so an
// external client can scrape it. It occupies one background goroutine for the
// lifetime of the process and shares no state with the host beyond the
// registry's thread-safe contract.
//
// The exporter is strictly best-effort: a failure to bind the configured port
// leaves the endpoint unreachable without affecting the host in any way.
type Exporter struct {
	registry *Registry

	// throttle caps fresh renders per second; nil means every scrape
	// renders a fresh snapshot.
	throttle *rate.Limiter

	renderMu sync.Mutex
	cached   []byte

	serverMu sync.Mutex
	server   *http.Server
}

// NewExporter creates an exporter for the given registry. cfg may be nil, in
// which case scrape throttling is disabled.
func NewExporter(registry *Registry, cfg *config.MetricsCfg) *Exporter {
	e := &Exporter{registry: registry}
	if cfg != nil && cfg.ThrottleQPS > 0 {
		e.throttle = rate.NewLimiter(rate.Limit(cfg.ThrottleQPS), 1)
	}
	return e
}

// Start binds 127.0.0.1:port and begins serving scrapes on a background
// goroutine. It returns immediately and never reports failure: if the port
// cannot be bound the exposition endpoint simply never becomes reachable,
// which must not prevent the host application from running.
func (e *Exporter) Start(port uint16) {
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Warn().Str("addr", addr).Err(err).Msg("metrics exporter disabled, could not bind")
		return
	}

	server := &http.Server{Handler: e}

	e.serverMu.Lock()
	e.server = server
	e.serverMu.Unlock()

	go func() {
		log.Info().Str("addr", addr).Msg("metrics exporter listening")
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Warn().Err(err).Msg("metrics exporter terminated")
		}
	}()
}

// Close stops the exporter's server if it is running. The core contract does
// not require stopping the exporter before process exit; Close exists for
// orderly shutdown and for tests.
func (e *Exporter) Close() error {
	e.serverMu.Lock()
	defer e.serverMu.Unlock()

	if e.server == nil {
		return nil
	}
	err := e.server.Close()
	e.server = nil
	return err
}

// ServeHTTP answers GET /metrics with the rendered registry state, any
// rendering failure with 500 "encode error", and everything else with
// 404 "not found".
func (e *Exporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.Path != MetricsPath {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("not found"))
		return
	}

	body, err := e.render()
	if err != nil {
		log.Error().Err(err).Msg("metrics exposition encode failed")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("encode error"))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// render produces the exposition body, reusing the previously rendered one
// when scrapes arrive faster than the configured throttle allows.
func (e *Exporter) render() ([]byte, error) {
	if e.throttle == nil {
		return e.encode()
	}

	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	if !e.throttle.Allow() && e.cached != nil {
		return e.cached, nil
	}

	body, err := e.encode()
	if err != nil {
		return nil, err
	}
	e.cached = body
	return body, nil
}

// encode renders a fresh snapshot into the text exposition format.
func (e *Exporter) encode() ([]byte, error) {
	families, err := e.registry.Snapshot()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, family); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// StartServer starts the exposition server for the process-wide registry.
// This is the startup call the host makes at most once, conditioned on the
// externally supplied enabled flag; it returns the exporter so a shutdown
// path may Close it.
func StartServer(port uint16) *Exporter {
	exporter := NewExporter(GetInstance(), nil)
	exporter.Start(port)
	return exporter
}
