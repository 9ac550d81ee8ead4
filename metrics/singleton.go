package metrics

import "sync"

var (
	_instance   *Registry
	_instanceMu sync.Mutex
)

// GetInstance returns the process-wide Registry singleton, constructing it on
// first access. Concurrent first accesses still observe exactly one instance;
// the registry lives for the remainder of the process.
func GetInstance() *Registry {
	_instanceMu.Lock()
	defer _instanceMu.Unlock()

	if _instance == nil {
		_instance = NewRegistry()
	}
	return _instance
}

// ResetInstance discards the current singleton so the next GetInstance call
// constructs a fresh registry. Intended for tests only.
func ResetInstance() {
	_instanceMu.Lock()
	defer _instanceMu.Unlock()
	_instance = nil
}

// SetInstanceForTesting replaces the singleton with the given registry.
// Intended for tests that need to observe what the package-level helpers
// record.
func SetInstanceForTesting(r *Registry) {
	_instanceMu.Lock()
	defer _instanceMu.Unlock()
	_instance = r
}

// Record reports one completed command execution to the process-wide
// registry. This is the instrumentation call used by host command handlers;
// it never fails and never blocks beyond registry-internal synchronization.
func Record(command, status string, seconds float64) {
	GetInstance().Record(command, status, seconds)
}
