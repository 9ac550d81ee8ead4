// Package discovery announces the metrics exposition endpoint to a Consul
// agent so a scraping client can find it through Consul service discovery.
// Announcement is strictly best-effort, like the exposition server itself: an
// unreachable agent leaves the endpoint undiscovered but never affects the
// host application.
package discovery

import (
	"fmt"
	"time"

	"github.com/hashicorp/consul/api"

	"github.com/maalogs/telemetry/log"
	"github.com/maalogs/telemetry/metrics"
)

const (
	defaultServiceName   = "maalogs-metrics"
	defaultCheckInterval = "15s"
)

// Cfg configures the Consul announcement. The zero value disables it.
type Cfg struct {
	// Enabled toggles the announcement as a whole.
	Enabled bool `mapstructure:"enabled"`

	// Address is the Consul agent address. Empty uses the client library
	// default (127.0.0.1:8500, overridable via CONSUL_HTTP_ADDR).
	Address string `mapstructure:"address"`

	// ServiceName is the registered service name.
	ServiceName string `mapstructure:"servicename"`

	// ServiceID distinguishes multiple instances of the same service.
	// Empty derives "<servicename>-<port>" at registration time.
	ServiceID string `mapstructure:"serviceid"`

	// CheckInterval is how often the agent probes the /metrics endpoint.
	CheckInterval string `mapstructure:"checkinterval"`
}

// GetName implements the config.Config interface.
func (c *Cfg) GetName() string {
	return "discovery"
}

// Validate implements the config.Config interface.
func (c *Cfg) Validate() error {
	if c.CheckInterval == "" {
		return nil
	}
	if _, err := time.ParseDuration(c.CheckInterval); err != nil {
		return fmt.Errorf("discovery config: invalid checkinterval: %w", err)
	}
	return nil
}

// Announcer registers and deregisters the metrics endpoint with one Consul
// agent.
type Announcer struct {
	client    *api.Client
	cfg       *Cfg
	serviceID string
}

// NewAnnouncer creates an announcer for the given configuration. It only
// constructs the client; no agent communication happens until Register.
func NewAnnouncer(cfg *Cfg) (*Announcer, error) {
	apiCfg := api.DefaultConfig()
	if cfg.Address != "" {
		apiCfg.Address = cfg.Address
	}

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client failed: %w", err)
	}

	return &Announcer{client: client, cfg: cfg}, nil
}

// registration builds the service registration for the given exposition port.
func (a *Announcer) registration(port uint16) *api.AgentServiceRegistration {
	name := a.cfg.ServiceName
	if name == "" {
		name = defaultServiceName
	}
	id := a.cfg.ServiceID
	if id == "" {
		id = fmt.Sprintf("%s-%d", name, port)
	}
	interval := a.cfg.CheckInterval
	if interval == "" {
		interval = defaultCheckInterval
	}

	return &api.AgentServiceRegistration{
		ID:      id,
		Name:    name,
		Address: "127.0.0.1",
		Port:    int(port),
		Tags:    []string{"telemetry", "prometheus"},
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://127.0.0.1:%d%s", port, metrics.MetricsPath),
			Interval:                       interval,
			DeregisterCriticalServiceAfter: "10m",
		},
	}
}

// Register announces the metrics endpoint on the given port to the agent.
func (a *Announcer) Register(port uint16) error {
	reg := a.registration(port)
	if err := a.client.Agent().ServiceRegister(reg); err != nil {
		return fmt.Errorf("register service %s failed: %w", reg.ID, err)
	}

	a.serviceID = reg.ID
	log.Info().Str("service", reg.Name).Str("id", reg.ID).Uint("port", uint64(port)).
		Msg("metrics endpoint announced to consul")
	return nil
}

// Deregister removes the announcement. Safe to call without a prior
// successful Register.
func (a *Announcer) Deregister() error {
	if a.serviceID == "" {
		return nil
	}
	if err := a.client.Agent().ServiceDeregister(a.serviceID); err != nil {
		return fmt.Errorf("deregister service %s failed: %w", a.serviceID, err)
	}
	a.serviceID = ""
	return nil
}

// Announce is the best-effort entry point used at host startup: it registers
// the endpoint when cfg enables it and swallows every failure apart from a
// warn log. The returned announcer is nil when nothing was registered.
func Announce(cfg *Cfg, port uint16) *Announcer {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	announcer, err := NewAnnouncer(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("consul announcement skipped")
		return nil
	}
	if err := announcer.Register(port); err != nil {
		log.Warn().Err(err).Msg("consul announcement skipped")
		return nil
	}
	return announcer
}
