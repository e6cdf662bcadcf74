// Package servecmder provides the serve command for running the catalog
// API and MCP servers.
package servecmder

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/catalog/api"
	"github.com/papercomputeco/catalog/api/mcp"
	"github.com/papercomputeco/catalog/cmd/catalog/storepath"
	"github.com/papercomputeco/catalog/pkg/config"
	"github.com/papercomputeco/catalog/pkg/logger"
)

type ServeCommander struct {
	apiListen       string
	mcpListen       string
	storageProvider string
	storagePath     string
	mcpEnabled      bool
	debug           bool
	logger          *zap.Logger
}

const serveLongDesc string = `Run the catalog API server.

Serves captured sessions over HTTP. With --mcp, also exposes the
sessions as MCP tools on a second listener.

Examples:
  catalog serve
  catalog serve --listen :8091
  catalog serve --mcp --mcp-listen :8092`

const serveShortDesc string = "Run the catalog API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
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

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.apiListen)
	config.AddStringFlag(cmd, config.Flags, config.FlagMCPListen, &cmder.mcpListen)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoragePath, &cmder.storagePath)
	cmd.Flags().BoolVar(&cmder.mcpEnabled, "mcp", false, "Also serve MCP tools")

	return cmd
}

func (c *ServeCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewZap(c.debug)
	defer c.logger.Sync()

	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, []string{
		config.FlagAPIListen,
		config.FlagMCPListen,
		config.FlagStorageProvider,
		config.FlagStoragePath,
	})

	storer, err := storepath.Open(v, configDir)
	if err != nil {
		return err
	}
	defer storer.Close()

	apiConfig := api.Config{
		ListenAddr: v.GetString("api.listen"),
	}
	apiServer := api.NewServer(apiConfig, storer, nil, c.logger)

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	var mcpHTTP *http.Server
	if c.mcpEnabled {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Storer: storer,
			Logger: c.logger,
		})
		if err != nil {
			return fmt.Errorf("creating MCP server: %w", err)
		}

		mcpHTTP = &http.Server{
			Addr:    v.GetString("api.mcp_listen"),
			Handler: mcpServer.Handler(),
		}

		c.logger.Info("starting MCP server",
			zap.String("listen", mcpHTTP.Addr),
		)
		go func() {
			if err := mcpHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- fmt.Errorf("MCP server error: %w", err)
			}
		}()
	}

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	}

	if mcpHTTP != nil {
		_ = mcpHTTP.Close()
	}
	return apiServer.Shutdown()
}
