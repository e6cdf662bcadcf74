package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent catalog configuration stored as
// config.toml in the .catalog/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Storage StorageConfig `toml:"storage"`
	Watch   WatchConfig   `toml:"watch"`
	API     APIConfig     `toml:"api"`
	Events  EventsConfig  `toml:"events"`
}

// StorageConfig selects and locates the snapshot store backend.
type StorageConfig struct {
	// Provider is one of "sqlite", "badger", or "memory".
	Provider string `toml:"provider,omitempty"`

	// Path is the database file (sqlite) or directory (badger).
	Path string `toml:"path,omitempty"`
}

// WatchConfig holds capture engine settings.
type WatchConfig struct {
	// Snapshot is the mirrored DOM snapshot file to watch.
	Snapshot string `toml:"snapshot,omitempty"`

	// DebounceMs is the change-notification coalescing window.
	DebounceMs uint `toml:"debounce_ms,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen    string `toml:"listen,omitempty"`
	MCPListen string `toml:"mcp_listen,omitempty"`
}

// EventsConfig holds event stream settings.
type EventsConfig struct {
	// Provider is "nop" or "kafka".
	Provider string `toml:"provider,omitempty"`

	// Brokers is the comma-joined Kafka broker list.
	Brokers string `toml:"brokers,omitempty"`

	// Topic is the Kafka topic capture events are published to.
	Topic string `toml:"topic,omitempty"`
}

// BrokerList splits the configured broker string.
func (e EventsConfig) BrokerList() []string {
	if e.Brokers == "" {
		return nil
	}
	parts := strings.Split(e.Brokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// configKeyInfo maps a user-facing dotted key name to a getter and
// setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.provider": {
		get: func(c *Config) string { return c.Storage.Provider },
		set: func(c *Config, v string) error { c.Storage.Provider = v; return nil },
	},
	"storage.path": {
		get: func(c *Config) string { return c.Storage.Path },
		set: func(c *Config, v string) error { c.Storage.Path = v; return nil },
	},
	"watch.snapshot": {
		get: func(c *Config) string { return c.Watch.Snapshot },
		set: func(c *Config, v string) error { c.Watch.Snapshot = v; return nil },
	},
	"watch.debounce_ms": {
		get: func(c *Config) string {
			if c.Watch.DebounceMs == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Watch.DebounceMs), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for watch.debounce_ms: %w", err)
			}
			c.Watch.DebounceMs = uint(n)
			return nil
		},
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"api.mcp_listen": {
		get: func(c *Config) string { return c.API.MCPListen },
		set: func(c *Config, v string) error { c.API.MCPListen = v; return nil },
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error { c.Events.Provider = v; return nil },
	},
	"events.brokers": {
		get: func(c *Config) string { return c.Events.Brokers },
		set: func(c *Config, v string) error { c.Events.Brokers = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
}
