package deckcmder

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/catalog/pkg/catalog"
	"github.com/papercomputeco/catalog/pkg/cliui"
	"github.com/papercomputeco/catalog/pkg/export"
	"github.com/papercomputeco/catalog/pkg/store"
	"github.com/papercomputeco/catalog/pkg/utils"
)

func init() {
	// Force TrueColor profile to fix lipgloss color detection issue
	// See: https://github.com/charmbracelet/lipgloss/issues/439
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.TrueColor))
	renderer.SetColorProfile(termenv.TrueColor)
	lipgloss.SetDefaultRenderer(renderer)
}

type deckView int

const (
	viewSessions deckView = iota
	viewEntries
)

type sessionRow struct {
	id   string
	sess *catalog.Session
}

type deckModel struct {
	storer   store.Store
	rows     []sessionRow
	current  *sessionRow
	view     deckView
	cursor   int
	width    int
	height   int
	viewport viewport.Model
	ready    bool
	err      error
	keys     deckKeyMap
	help     help.Model
}

var (
	deckTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	deckMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	deckAccentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("215"))
	deckSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	deckCursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("214")).Bold(true)
	deckErrStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type deckKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Back    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k deckKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Enter, k.Back, k.Refresh, k.Quit}
}

func (k deckKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Down, k.Up, k.Enter}, {k.Back, k.Refresh, k.Quit}}
}

func defaultKeyMap() deckKeyMap {
	return deckKeyMap{
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Enter:   key.NewBinding(key.WithKeys("enter", "l"), key.WithHelp("enter", "open")),
		Back:    key.NewBinding(key.WithKeys("h", "esc"), key.WithHelp("h", "back")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type snapshotLoadedMsg struct {
	rows []sessionRow
	err  error
}

func runDeckTUI(ctx context.Context, storer store.Store, sessionID string) error {
	rows, err := loadRows(ctx, storer)
	if err != nil {
		return err
	}

	model := newDeckModel(storer, rows)

	if sessionID != "" {
		for i := range rows {
			if rows[i].id == sessionID {
				model.view = viewEntries
				model.current = &rows[i]
				model.cursor = i
				break
			}
		}
		if model.current == nil {
			return fmt.Errorf("session not found: %s", sessionID)
		}
	}

	program := bubbletea.NewProgram(model,
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)
	_, err = program.Run()
	return err
}

func newDeckModel(storer store.Store, rows []sessionRow) deckModel {
	return deckModel{
		storer: storer,
		rows:   rows,
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
}

func loadRows(ctx context.Context, storer store.Store) ([]sessionRow, error) {
	snap, err := storer.Load(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]sessionRow, 0, len(snap))
	for id, sess := range snap {
		rows = append(rows, sessionRow{id: id, sess: sess})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].sess.UpdatedAt != rows[j].sess.UpdatedAt {
			return rows[i].sess.UpdatedAt > rows[j].sess.UpdatedAt
		}
		return rows[i].id < rows[j].id
	})
	return rows, nil
}

func (m deckModel) Init() bubbletea.Cmd {
	return nil
}

func (m deckModel) refreshCmd() bubbletea.Cmd {
	storer := m.storer
	return func() bubbletea.Msg {
		rows, err := loadRows(context.Background(), storer)
		return snapshotLoadedMsg{rows: rows, err: err}
	}
}

func (m deckModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width-4, msg.Height-6)
		m.ready = true
		if m.view == viewEntries && m.current != nil {
			m.viewport.SetContent(m.renderEntries())
		}
		return m, nil

	case snapshotLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.rows = msg.rows
		if m.cursor >= len(m.rows) {
			m.cursor = max(0, len(m.rows)-1)
		}
		if m.view == viewEntries && m.current != nil {
			// Re-point at the refreshed session, if it survived.
			id := m.current.id
			m.current = nil
			for i := range m.rows {
				if m.rows[i].id == id {
					m.current = &m.rows[i]
					break
				}
			}
			if m.current == nil {
				m.view = viewSessions
			} else if m.ready {
				m.viewport.SetContent(m.renderEntries())
			}
		}
		return m, nil

	case bubbletea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, bubbletea.Quit

		case key.Matches(msg, m.keys.Refresh):
			return m, m.refreshCmd()

		case key.Matches(msg, m.keys.Up):
			if m.view == viewSessions && m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Down):
			if m.view == viewSessions && m.cursor < len(m.rows)-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Enter):
			if m.view == viewSessions && m.cursor < len(m.rows) {
				m.view = viewEntries
				m.current = &m.rows[m.cursor]
				if m.ready {
					m.viewport.SetContent(m.renderEntries())
					m.viewport.GotoTop()
				}
			}

		case key.Matches(msg, m.keys.Back):
			if m.view == viewEntries {
				m.view = viewSessions
				m.current = nil
			}
		}
	}

	if m.view == viewEntries && m.ready {
		var cmd bubbletea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m deckModel) View() string {
	var b strings.Builder

	b.WriteString("\n  " + deckTitleStyle.Render("Catalog Deck") + "\n\n")

	if m.err != nil {
		b.WriteString("  " + deckErrStyle.Render(m.err.Error()) + "\n\n")
	}

	switch m.view {
	case viewSessions:
		b.WriteString(m.renderSessions())
	case viewEntries:
		if m.ready {
			b.WriteString(m.viewport.View() + "\n")
		}
	}

	b.WriteString("\n  " + m.help.View(m.keys) + "\n")
	return b.String()
}

func (m deckModel) renderSessions() string {
	if len(m.rows) == 0 {
		return "  " + deckMutedStyle.Render("No captured sessions yet. Run `catalog watch` first.") + "\n"
	}

	var b strings.Builder
	b.WriteString("  " + deckSectionStyle.Render(fmt.Sprintf("Sessions (%d)", len(m.rows))) + "\n\n")

	for i, row := range m.rows {
		title := utils.Truncate(row.sess.Title, 56)
		line := fmt.Sprintf("%-58s %4d entries  %s",
			title,
			len(row.sess.Entries),
			formatWhen(row.sess.UpdatedAt),
		)
		if i == m.cursor {
			b.WriteString("  " + deckCursorStyle.Render("▸ "+line) + "\n")
		} else {
			b.WriteString("    " + deckAccentStyle.Render(line) + "\n")
		}
	}
	return b.String()
}

// renderEntries renders the current session through the markdown
// exporter so the deck view and file export stay identical.
func (m deckModel) renderEntries() string {
	doc, err := export.Render(m.current.id, m.current.sess, nil, export.FormatMarkdown)
	if err != nil {
		return deckErrStyle.Render(err.Error())
	}

	pretty, err := cliui.RenderMarkdown(doc)
	if err != nil {
		return doc
	}
	return pretty
}

func formatWhen(millis int64) string {
	if millis == 0 {
		return ""
	}
	return time.UnixMilli(millis).Local().Format("Jan 02 15:04")
}
