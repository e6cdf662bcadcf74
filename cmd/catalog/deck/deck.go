// Package deckcmder provides the deck command, an interactive browser
// for captured sessions.
package deckcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/catalog/cmd/catalog/storepath"
	"github.com/papercomputeco/catalog/pkg/config"
)

const deckLongDesc string = `Deck is an interactive browser for captured sessions.

Navigate the session list, drill into a session to read its entries,
and refresh while a watch is running.

Examples:
  catalog deck
  catalog deck --session 0c7f94f2-58a1-4cbe-90d5-1f2ce1f0aa11
  catalog deck --storage badger`

const deckShortDesc string = "Deck - interactive session browser"

type deckCommander struct {
	storageProvider string
	storagePath     string
	session         string
}

func NewDeckCmd() *cobra.Command {
	cmder := &deckCommander{}

	cmd := &cobra.Command{
		Use:   "deck",
		Short: deckShortDesc,
		Long:  deckLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoragePath, &cmder.storagePath)
	cmd.Flags().StringVar(&cmder.session, "session", "", "Open a specific session directly")

	return cmd
}

func (c *deckCommander) run(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, []string{
		config.FlagStorageProvider,
		config.FlagStoragePath,
	})

	storer, err := storepath.Open(v, configDir)
	if err != nil {
		return err
	}
	defer storer.Close()

	if err := runDeckTUI(cmd.Context(), storer, c.session); err != nil {
		return fmt.Errorf("running deck: %w", err)
	}
	return nil
}
