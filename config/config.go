package config

// Config interface defines the basic configuration contract
type Config interface {
	GetName() string
	Validate() error
}

// ConfigChangeListener receives notifications after a configuration has been
// reloaded and replaced. Listeners are invoked synchronously in registration
// order; an error from one listener does not stop the others.
type ConfigChangeListener interface {
	OnConfigChanged(configName string, newConfig, oldConfig Config) error
}
