package config

import "sync"

var (
	_instance   ConfigManager
	_instanceMu sync.Mutex
)

// GetInstance returns the process-wide ConfigManager singleton. The manager is
// constructed lazily on first access; concurrent first accesses still observe
// exactly one instance.
func GetInstance() ConfigManager {
	_instanceMu.Lock()
	defer _instanceMu.Unlock()

	if _instance == nil {
		_instance = NewConfigManager()
	}
	return _instance
}

// ResetInstance discards the current singleton so the next GetInstance call
// constructs a fresh manager. Intended for tests only.
func ResetInstance() {
	_instanceMu.Lock()
	defer _instanceMu.Unlock()

	if _instance != nil {
		_ = _instance.Close()
	}
	_instance = nil
}

// SetInstanceForTesting replaces the singleton with the given manager.
// Intended for tests that need to inject a mock ConfigManager.
func SetInstanceForTesting(cm ConfigManager) {
	_instanceMu.Lock()
	defer _instanceMu.Unlock()
	_instance = cm
}
