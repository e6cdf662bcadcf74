package config

const (
	defaultStorageProvider = "sqlite"
	defaultAPIListen       = ":8091"
	defaultMCPListen       = ":8092"
	defaultDebounceMs      = 300
	defaultEventsProvider  = "nop"
	defaultEventsTopic     = "catalog.captures"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
		Watch: WatchConfig{
			DebounceMs: defaultDebounceMs,
		},
		API: APIConfig{
			Listen:    defaultAPIListen,
			MCPListen: defaultMCPListen,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
