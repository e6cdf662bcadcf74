// Package exportcmder provides the export command for rendering
// captured sessions to files or stdout.
package exportcmder

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/catalog/cmd/catalog/storepath"
	"github.com/papercomputeco/catalog/pkg/cliui"
	"github.com/papercomputeco/catalog/pkg/config"
	"github.com/papercomputeco/catalog/pkg/export"
)

const exportLongDesc string = `Export captured sessions.

With a session id, renders that session in the chosen format. Without
one, exports the whole snapshot as JSON.

Examples:
  catalog export
  catalog export 0c7f94f2-58a1-4cbe-90d5-1f2ce1f0aa11 --format markdown
  catalog export 0c7f94f2-58a1-4cbe-90d5-1f2ce1f0aa11 --ids id1,id2 -o out.md
  catalog export 0c7f94f2-58a1-4cbe-90d5-1f2ce1f0aa11 --format markdown --preview`

const exportShortDesc string = "Export captured sessions"

type exportCommander struct {
	storageProvider string
	storagePath     string
	format          string
	ids             string
	out             string
	save            bool
	preview         bool
}

func NewExportCmd() *cobra.Command {
	cmder := &exportCommander{}

	cmd := &cobra.Command{
		Use:   "export [session-id]",
		Short: exportShortDesc,
		Long:  exportLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoragePath, &cmder.storagePath)
	cmd.Flags().StringVarP(&cmder.format, "format", "f", "json", "Output format (json, markdown, text)")
	cmd.Flags().StringVar(&cmder.ids, "ids", "", "Comma-separated entry ids to include (default: all)")
	cmd.Flags().StringVarP(&cmder.out, "out", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&cmder.save, "save", false, "Write to a dated file name (e.g. catalog_2026-08-30.json)")
	cmd.Flags().BoolVar(&cmder.preview, "preview", false, "Render markdown output for the terminal")

	return cmd
}

func (c *exportCommander) run(cmd *cobra.Command, args []string) error {
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

	snap, err := storer.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}

	var rendered string
	if len(args) == 0 {
		rendered, err = export.RenderSnapshot(snap)
		if err != nil {
			return err
		}
		return c.emit(rendered, export.FormatJSON)
	}

	sessionID := args[0]
	sess, ok := snap[sessionID]
	if !ok {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	format, err := export.ParseFormat(c.format)
	if err != nil {
		return err
	}

	var ids []string
	for _, part := range strings.Split(c.ids, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}

	rendered, err = export.Render(sessionID, sess, ids, format)
	if err != nil {
		return err
	}
	return c.emit(rendered, format)
}

func (c *exportCommander) emit(rendered string, format export.Format) error {
	if c.save && c.out == "" {
		c.out = export.FileName(time.Now())
	}
	if c.out != "" {
		if err := os.WriteFile(c.out, []byte(rendered), 0o600); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		fmt.Printf("  %s wrote %s\n", cliui.SuccessMark, c.out)
		return nil
	}

	if c.preview && format == export.FormatMarkdown {
		pretty, err := cliui.RenderMarkdown(rendered)
		if err == nil {
			rendered = pretty
		}
	}

	fmt.Println(rendered)
	return nil
}
