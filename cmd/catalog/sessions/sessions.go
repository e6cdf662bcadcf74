// Package sessionscmder provides the sessions command for listing
// captured sessions and their entries.
package sessionscmder

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/catalog/cmd/catalog/storepath"
	"github.com/papercomputeco/catalog/pkg/catalog"
	"github.com/papercomputeco/catalog/pkg/cliui"
	"github.com/papercomputeco/catalog/pkg/config"
	"github.com/papercomputeco/catalog/pkg/utils"
)

const sessionsLongDesc string = `List captured sessions, most recently active first.

Pass a session id to show its captured entries in conversation order.

Examples:
  catalog sessions
  catalog sessions 0c7f94f2-58a1-4cbe-90d5-1f2ce1f0aa11`

const sessionsShortDesc string = "List captured sessions"

type sessionsCommander struct {
	storageProvider string
	storagePath     string
}

func NewSessionsCmd() *cobra.Command {
	cmder := &sessionsCommander{}

	cmd := &cobra.Command{
		Use:   "sessions [session-id]",
		Short: sessionsShortDesc,
		Long:  sessionsLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoragePath, &cmder.storagePath)

	return cmd
}

func (c *sessionsCommander) run(cmd *cobra.Command, args []string) error {
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

	if len(args) == 1 {
		return printSession(args[0], snap)
	}
	return printSessions(snap)
}

func printSessions(snap catalog.Snapshot) error {
	if len(snap) == 0 {
		fmt.Printf("  %s No captured sessions yet. Run `catalog watch` first.\n", cliui.DimStyle.Render("●"))
		return nil
	}

	type row struct {
		id   string
		sess *catalog.Session
	}
	rows := make([]row, 0, len(snap))
	for id, sess := range snap {
		rows = append(rows, row{id, sess})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].sess.UpdatedAt != rows[j].sess.UpdatedAt {
			return rows[i].sess.UpdatedAt > rows[j].sess.UpdatedAt
		}
		return rows[i].id < rows[j].id
	})

	fmt.Printf("\n  %s  %s\n\n",
		cliui.KeyStyle.Render("Sessions:"),
		cliui.CountStyle.Render(fmt.Sprintf("%d", len(rows))),
	)
	for _, r := range rows {
		fmt.Printf("  %s %s\n",
			cliui.IDStyle.Render(r.id),
			cliui.DimStyle.Render(formatWhen(r.sess.UpdatedAt)),
		)
		fmt.Printf("    %s %s\n",
			cliui.NameStyle.Render(utils.Truncate(r.sess.Title, 64)),
			cliui.CountStyle.Render(fmt.Sprintf("(%d entries)", len(r.sess.Entries))),
		)
	}
	fmt.Println()
	return nil
}

func printSession(sessionID string, snap catalog.Snapshot) error {
	sess, ok := snap[sessionID]
	if !ok {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("Session:"), cliui.IDStyle.Render(sessionID))
	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Title:  "), cliui.TitleStyle.Render(sess.Title))
	fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render("Updated:"), cliui.DimStyle.Render(formatWhen(sess.UpdatedAt)))

	for i, entry := range sess.Entries {
		preview := utils.Truncate(entry.Text, 72)
		fmt.Printf("  %s %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
			cliui.PreviewStyle.Render(preview),
			cliui.DimStyle.Render(formatWhen(entry.Timestamp)),
		)
	}

	fmt.Println()
	return nil
}

func formatWhen(millis int64) string {
	if millis == 0 {
		return ""
	}
	return time.UnixMilli(millis).Local().Format("2006-01-02 15:04")
}
