package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --storage
// on "catalog watch", "catalog sessions", and "catalog serve").
type Flag struct {
	// Name is the long flag name (e.g. "snapshot").
	Name string

	// Shorthand is the one-letter short flag (e.g. "s"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "watch.snapshot").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagStorageProvider = "storage-provider"
	FlagStoragePath     = "storage-path"
	FlagSnapshot        = "snapshot"
	FlagDebounceMs      = "debounce-ms"
	FlagAPIListen       = "api-listen"
	FlagMCPListen       = "mcp-listen"
	FlagEventsProvider  = "events-provider"
	FlagEventsBrokers   = "events-brokers"
	FlagEventsTopic     = "events-topic"
)

// Flags is the shared registry used by all catalog commands.
var Flags = FlagSet{
	FlagStorageProvider: {
		Name:        "storage",
		ViperKey:    "storage.provider",
		Description: "snapshot store backend (sqlite, badger, memory)",
	},
	FlagStoragePath: {
		Name:        "storage-path",
		ViperKey:    "storage.path",
		Description: "snapshot store file (sqlite) or directory (badger)",
	},
	FlagSnapshot: {
		Name:        "snapshot",
		Shorthand:   "s",
		ViperKey:    "watch.snapshot",
		Description: "mirrored DOM snapshot file to watch",
	},
	FlagDebounceMs: {
		Name:        "debounce-ms",
		ViperKey:    "watch.debounce_ms",
		Description: "change-notification coalescing window in milliseconds",
	},
	FlagAPIListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "api.listen",
		Description: "API server listen address",
	},
	FlagMCPListen: {
		Name:        "mcp-listen",
		ViperKey:    "api.mcp_listen",
		Description: "MCP server listen address",
	},
	FlagEventsProvider: {
		Name:        "events",
		ViperKey:    "events.provider",
		Description: "capture event publisher (nop, kafka)",
	},
	FlagEventsBrokers: {
		Name:        "brokers",
		ViperKey:    "events.brokers",
		Description: "comma-separated Kafka broker list",
	},
	FlagEventsTopic: {
		Name:        "topic",
		ViperKey:    "events.topic",
		Description: "Kafka topic for capture events",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
