// Package watchcmder provides the watch command for running the capture
// engine against a mirrored conversation snapshot.
package watchcmder

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papercomputeco/catalog/cmd/catalog/storepath"
	"github.com/papercomputeco/catalog/pkg/config"
	"github.com/papercomputeco/catalog/pkg/dotdir"
	"github.com/papercomputeco/catalog/pkg/engine"
	"github.com/papercomputeco/catalog/pkg/eventstream"
	"github.com/papercomputeco/catalog/pkg/eventstream/kafka"
	"github.com/papercomputeco/catalog/pkg/eventstream/nop"
	"github.com/papercomputeco/catalog/pkg/livetree/htmltree"
	"github.com/papercomputeco/catalog/pkg/logger"
)

type WatchCommander struct {
	snapshot        string
	storageProvider string
	storagePath     string
	debounceMs      uint
	eventsProvider  string
	eventsBrokers   string
	eventsTopic     string
	debug           bool
	logger          *zap.Logger
}

const watchLongDesc string = `Watch a mirrored conversation snapshot and capture your entries.

The snapshot file is a mirrored copy of the live conversation tree
(for example, written by a browser that saves the page on change).
Each change is debounced, scanned for new user entries, and merged
into the per-session catalog.

Examples:
  catalog watch --snapshot /srv/mirror/claude.html
  catalog watch -s ./conversation.html --storage badger
  catalog watch -s ./conversation.html --events kafka --brokers localhost:9092`

const watchShortDesc string = "Watch a conversation snapshot and capture entries"

// logFileName is the engine log file written under the dotdir target.
const logFileName = "watch.log"

func NewWatchCmd() *cobra.Command {
	cmder := &WatchCommander{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: watchShortDesc,
		Long:  watchLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagSnapshot, &cmder.snapshot)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoragePath, &cmder.storagePath)
	config.AddUintFlag(cmd, config.Flags, config.FlagDebounceMs, &cmder.debounceMs)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsProvider, &cmder.eventsProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsBrokers, &cmder.eventsBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsTopic, &cmder.eventsTopic)

	return cmd
}

func (c *WatchCommander) run(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, []string{
		config.FlagSnapshot,
		config.FlagStorageProvider,
		config.FlagStoragePath,
		config.FlagDebounceMs,
		config.FlagEventsProvider,
		config.FlagEventsBrokers,
		config.FlagEventsTopic,
	})

	snapshotPath := v.GetString("watch.snapshot")
	if snapshotPath == "" {
		return fmt.Errorf("no snapshot file configured; pass --snapshot or set watch.snapshot")
	}

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return err
	}

	// Lifecycle messages go to the terminal; engine internals go to the
	// log file under the dotdir when one can be opened.
	cli := logger.New(logger.WithPretty(true), logger.WithDebug(c.debug))
	c.logger = logger.NewZap(c.debug)
	if target != "" {
		logFile, ferr := os.OpenFile(filepath.Join(target, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if ferr != nil {
			cli.Warn("could not open log file, logging to stdout", "error", ferr)
		} else {
			defer logFile.Close()
			c.logger = logger.NewZap(c.debug, logFile)
			cli = logger.Multi(cli, logger.New(logger.WithJSON(true), logger.WithDebug(c.debug), logger.WithWriter(logFile)))
		}
	}
	defer c.logger.Sync()

	storer, err := storepath.Open(v, configDir)
	if err != nil {
		return err
	}
	defer storer.Close()

	src, err := htmltree.New(snapshotPath, c.logger)
	if err != nil {
		return fmt.Errorf("attaching to snapshot: %w", err)
	}
	defer src.Close()

	publisher, err := c.createPublisher(v)
	if err != nil {
		return err
	}
	defer publisher.Close()

	eng, err := engine.New(&engine.Config{
		Source:    src,
		Store:     storer,
		Publisher: publisher,
		Debounce:  time.Duration(v.GetUint("watch.debounce_ms")) * time.Millisecond,
		OnRefresh: func(sessionID string) {
			if target == "" {
				return
			}
			state := &dotdir.WatchState{
				SnapshotPath:  snapshotPath,
				LastSessionID: sessionID,
			}
			if err := ddm.SaveWatchState(state, target); err != nil {
				c.logger.Warn("saving watch state", zap.Error(err))
			}
		},
		Logger: c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	ctx := cmd.Context()
	eng.Start(ctx)
	defer eng.Teardown()

	cli.Info("watching snapshot",
		"snapshot", snapshotPath,
		"storage", v.GetString("storage.provider"),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		cli.Info("received signal, shutting down", "signal", sig.String())
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (c *WatchCommander) createPublisher(v *viper.Viper) (eventstream.Publisher, error) {
	switch v.GetString("events.provider") {
	case "kafka":
		cfg := config.EventsConfig{Brokers: v.GetString("events.brokers")}
		brokers := cfg.BrokerList()
		if len(brokers) == 0 {
			return nil, fmt.Errorf("kafka events provider requires --brokers")
		}
		return kafka.New(brokers, v.GetString("events.topic")), nil
	case "nop", "":
		return nop.New(), nil
	default:
		return nil, fmt.Errorf("unknown events provider: %q (available: nop, kafka)", v.GetString("events.provider"))
	}
}
