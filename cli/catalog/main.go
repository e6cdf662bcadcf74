// Command catalog is the single CLI binary: capture watcher, session
// browser, exporter, API server, and MCP server as subcommands.
package main

import (
	"os"

	catalogcmder "github.com/papercomputeco/catalog/cmd/catalog"
)

func main() {
	if err := catalogcmder.NewCatalogCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
