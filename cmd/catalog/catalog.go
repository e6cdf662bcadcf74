// Package catalogcmder
package catalogcmder

import (
	"github.com/spf13/cobra"

	clearcmder "github.com/papercomputeco/catalog/cmd/catalog/clear"
	configcmder "github.com/papercomputeco/catalog/cmd/catalog/config"
	deckcmder "github.com/papercomputeco/catalog/cmd/catalog/deck"
	exportcmder "github.com/papercomputeco/catalog/cmd/catalog/export"
	servecmder "github.com/papercomputeco/catalog/cmd/catalog/serve"
	sessionscmder "github.com/papercomputeco/catalog/cmd/catalog/sessions"
	watchcmder "github.com/papercomputeco/catalog/cmd/catalog/watch"
	versioncmder "github.com/papercomputeco/catalog/cmd/version"
)

const catalogLongDesc string = `Catalog captures your questions from a live conversation tree
and keeps them browsable per session.

Run the capture engine with:
  catalog watch        Watch a mirrored conversation snapshot
  catalog sessions     Browse captured sessions
  catalog deck         Interactive session browser
  catalog serve        Run the HTTP API (and MCP) server`

const catalogShortDesc string = "Catalog - Conversation capture"

func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: catalogShortDesc,
		Long:  catalogLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .catalog directory")

	// Add subcommands
	cmd.AddCommand(watchcmder.NewWatchCmd())
	cmd.AddCommand(sessionscmder.NewSessionsCmd())
	cmd.AddCommand(exportcmder.NewExportCmd())
	cmd.AddCommand(clearcmder.NewClearCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(deckcmder.NewDeckCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
