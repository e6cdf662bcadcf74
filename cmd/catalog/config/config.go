// Package configcmder provides the config command for managing persistent
// catalog configuration stored in the .catalog/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent catalog configuration.

Configuration is stored as config.toml in the .catalog/ directory and
provides default values for command flags. CLI flags always take
precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.path,
  watch.snapshot, watch.debounce_ms,
  api.listen, api.mcp_listen,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  catalog config set <key> <value>    Set a configuration value
  catalog config get <key>            Get a configuration value
  catalog config list                 List all configuration values

Examples:
  catalog config set storage.provider badger
  catalog config set watch.snapshot /srv/mirror/claude.html
  catalog config get events.topic
  catalog config list`

const configShortDesc string = "Manage persistent catalog configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
