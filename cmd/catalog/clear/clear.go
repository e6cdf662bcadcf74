// Package clearcmder provides the clear command for wiping captured
// sessions.
package clearcmder

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/catalog/cmd/catalog/storepath"
	"github.com/papercomputeco/catalog/pkg/cliui"
	"github.com/papercomputeco/catalog/pkg/config"
	"github.com/papercomputeco/catalog/pkg/dotdir"
)

const clearLongDesc string = `Clear every captured session. This cannot be undone.

Examples:
  catalog clear --force`

const clearShortDesc string = "Clear all captured sessions"

type clearCommander struct {
	storageProvider string
	storagePath     string
	force           bool
}

func NewClearCmd() *cobra.Command {
	cmder := &clearCommander{}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: clearShortDesc,
		Long:  clearLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoragePath, &cmder.storagePath)
	cmd.Flags().BoolVar(&cmder.force, "force", false, "Skip the confirmation prompt")

	return cmd
}

func (c *clearCommander) run(cmd *cobra.Command) error {
	if !c.force {
		fmt.Print("Clear all captured sessions? This cannot be undone. [y/N] ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("aborted")
			return nil
		}
	}

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

	err = cliui.Step(os.Stdout, "Clearing captured sessions", func() error {
		if err := storer.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clearing sessions: %w", err)
		}

		// The persisted watch state points at a session that no longer
		// exists; drop it too.
		ddm := dotdir.NewManager()
		target, terr := ddm.Target(configDir)
		if terr == nil && target != "" {
			_ = ddm.ClearWatchState(target)
		}
		return nil
	})
	return err
}
