package components

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/pgtabs/internal/models"
	"github.com/rebeliceyang/pgtabs/internal/switcher"
	"github.com/rebeliceyang/pgtabs/internal/ui/theme"
	"github.com/rebeliceyang/pgtabs/internal/workspace"
)

// TableSelectedMsg is sent when the user picks a relation in the switcher.
// TabID is the tab the switcher was opened on.
type TableSelectedMsg struct {
	TabID  workspace.TabID
	Schema string
	Name   string
}

// SwitcherClosedMsg is sent when the switcher is dismissed without a pick
type SwitcherClosedMsg struct{}

// SwitcherFailedMsg carries a catalog load failure
type SwitcherFailedMsg struct {
	Err error
}

// SwitcherCopiedMsg reports the result of ctrl+y
type SwitcherCopiedMsg struct {
	Text string
	Err  error
}

// switcherCatalogMsg is the result of the catalog fetch for one open
type switcherCatalogMsg struct {
	session int
	catalog models.Catalog
	err     error
}

// TableSwitcher is the quick switcher dialog
type TableSwitcher struct {
	Switcher *switcher.Switcher
	Input    textinput.Model
	Spinner  spinner.Model
	Theme    theme.Theme
	Width    int
	Height   int
	CopyKey  key.Binding

	session int
	target  workspace.TabID
	copy    func(string) error

	// layout of the last View, for mouse hit testing
	originX, originY int
	boxWidth         int
	rowStart, rowEnd int
}

// listTop is the line of the first entry inside the dialog box: border,
// title, input and a blank line come first.
const listTop = 4

// NewTableSwitcher creates a closed switcher dialog
func NewTableSwitcher(th theme.Theme, defaultSchema, locale string) *TableSwitcher {
	ti := textinput.New()
	ti.Placeholder = "Table name..."
	ti.Prompt = "› "
	ti.CharLimit = 128

	return &TableSwitcher{
		Switcher: switcher.New(defaultSchema, locale),
		Input:    ti,
		Spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		Theme:    th,
		CopyKey:  key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy table name")),
		copy:     clipboard.WriteAll,
	}
}

// SetClipboard replaces the clipboard writer
func (ts *TableSwitcher) SetClipboard(fn func(string) error) {
	if fn != nil {
		ts.copy = fn
	}
}

// IsOpen reports whether the dialog is shown
func (ts *TableSwitcher) IsOpen() bool {
	return ts.Switcher.IsOpen()
}

// Open starts a new session for the tab target and returns the command that
// loads the catalog. provider is nil when the tab has no database session.
func (ts *TableSwitcher) Open(ctx context.Context, target workspace.TabID, provider switcher.CatalogProvider) (tea.Cmd, error) {
	if err := ts.Switcher.Open(provider != nil); err != nil {
		return nil, err
	}
	ts.session++
	ts.target = target
	ts.rowStart, ts.rowEnd = 0, 0
	ts.Input.SetValue("")
	ts.Input.Focus()

	session := ts.session
	load := func() tea.Msg {
		catalog, err := switcher.Load(ctx, provider)
		return switcherCatalogMsg{session: session, catalog: catalog, err: err}
	}
	return tea.Batch(load, ts.Spinner.Tick, textinput.Blink), nil
}

// SetOrigin records the screen cell of the dialog's top left corner
func (ts *TableSwitcher) SetOrigin(x, y int) {
	ts.originX, ts.originY = x, y
}

// Close dismisses the dialog without a selection
func (ts *TableSwitcher) Close() {
	ts.Switcher.Cancel()
	ts.Input.Blur()
}

// Update handles messages while the dialog is open
func (ts *TableSwitcher) Update(msg tea.Msg) (*TableSwitcher, tea.Cmd) {
	switch msg := msg.(type) {
	case switcherCatalogMsg:
		if msg.session != ts.session || ts.Switcher.State() != switcher.StateLoading {
			return ts, nil
		}
		if msg.err != nil {
			err := ts.Switcher.LoadFailed(msg.err)
			ts.Input.Blur()
			return ts, func() tea.Msg { return SwitcherFailedMsg{Err: err} }
		}
		ts.Switcher.Loaded(msg.catalog)
		ts.Switcher.SetQuery(ts.Input.Value())
		return ts, nil

	case spinner.TickMsg:
		if ts.Switcher.State() != switcher.StateLoading {
			return ts, nil
		}
		var cmd tea.Cmd
		ts.Spinner, cmd = ts.Spinner.Update(msg)
		return ts, cmd

	case tea.MouseMsg:
		return ts, ts.handleMouse(msg)

	case tea.KeyMsg:
		if !ts.IsOpen() {
			return ts, nil
		}
		if key.Matches(msg, ts.CopyKey) {
			entry, ok := ts.Switcher.Current()
			if !ok {
				return ts, nil
			}
			text := entry.Qualified()
			copyFn := ts.copy
			return ts, func() tea.Msg { return SwitcherCopiedMsg{Text: text, Err: copyFn(text)} }
		}
		switch msg.String() {
		case "esc":
			ts.Close()
			return ts, func() tea.Msg { return SwitcherClosedMsg{} }
		case "up", "ctrl+p", "shift+tab":
			ts.Switcher.SelectPrevious()
			return ts, nil
		case "down", "ctrl+n", "tab":
			ts.Switcher.SelectNext()
			return ts, nil
		case "enter":
			return ts, ts.pick()
		}

		var cmd tea.Cmd
		before := ts.Input.Value()
		ts.Input, cmd = ts.Input.Update(msg)
		if after := ts.Input.Value(); after != before {
			ts.Switcher.SetQuery(after)
		}
		return ts, cmd
	}

	var cmd tea.Cmd
	ts.Input, cmd = ts.Input.Update(msg)
	return ts, cmd
}

// pick closes the dialog with the highlighted relation
func (ts *TableSwitcher) pick() tea.Cmd {
	sel, ok := ts.Switcher.SelectCurrent()
	if !ok {
		return nil
	}
	ts.Input.Blur()
	msg := TableSelectedMsg{TabID: ts.target, Schema: sel.Schema, Name: sel.Name}
	return func() tea.Msg { return msg }
}

// handleMouse scrolls with the wheel, highlights the row under the pointer
// on motion and opens it on a left click.
func (ts *TableSwitcher) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		ts.Switcher.SelectPrevious()
		return nil
	case tea.MouseButtonWheelDown:
		ts.Switcher.SelectNext()
		return nil
	}

	i, ok := ts.rowAt(msg.X, msg.Y)
	if !ok {
		return nil
	}
	switch {
	case msg.Action == tea.MouseActionMotion:
		ts.Switcher.SelectIndex(i)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		ts.Switcher.SelectIndex(i)
		return ts.pick()
	}
	return nil
}

// rowAt maps a screen cell to an entry index using the last rendered layout
func (ts *TableSwitcher) rowAt(x, y int) (int, bool) {
	if ts.Switcher.State() != switcher.StateReady {
		return 0, false
	}
	if x < ts.originX || x >= ts.originX+ts.boxWidth {
		return 0, false
	}
	row := y - ts.originY - listTop
	if row < 0 || row >= ts.rowEnd-ts.rowStart {
		return 0, false
	}
	return ts.rowStart + row, true
}

// View renders the dialog
func (ts *TableSwitcher) View() string {
	width := max(ts.Width, 30)
	listHeight := max(ts.Height-6, 3)
	ts.Input.Width = width - 6

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ts.Theme.BorderFocused)
	mutedStyle := lipgloss.NewStyle().Foreground(ts.Theme.Muted)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Go to table"))
	b.WriteString("\n")
	b.WriteString(ts.Input.View())
	b.WriteString("\n\n")

	ts.rowStart, ts.rowEnd = 0, 0
	switch ts.Switcher.State() {
	case switcher.StateLoading:
		b.WriteString(ts.Spinner.View() + " Loading tables...")
	case switcher.StateReady:
		b.WriteString(ts.renderEntries(width-4, listHeight))
	}

	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Italic(true).Render("↑/↓ select │ enter open │ "+ts.CopyKey.Help().Key+" copy name │ esc close"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ts.Theme.BorderFocused).
		Padding(0, 1).
		Width(width).
		Render(b.String())
	ts.boxWidth = lipgloss.Width(box)
	return box
}

func (ts *TableSwitcher) renderEntries(width, height int) string {
	entries := ts.Switcher.Entries()
	if len(entries) == 0 {
		return lipgloss.NewStyle().Foreground(ts.Theme.Muted).Render(switcher.EmptyPlaceholder)
	}

	selected := ts.Switcher.SelectedIndex()
	start := 0
	if selected >= height {
		start = selected - height + 1
	}
	end := min(start+height, len(entries))
	ts.rowStart, ts.rowEnd = start, end

	kindStyle := lipgloss.NewStyle().Foreground(ts.Theme.Muted)
	selStyle := lipgloss.NewStyle().Background(ts.Theme.Selection).Bold(true)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		e := entries[i]
		kind := e.KindLabel()
		nameWidth := max(width-runewidth.StringWidth(kind)-1, 4)
		name := runewidth.FillRight(runewidth.Truncate(e.DisplayName, nameWidth, "…"), nameWidth)
		line := name + " " + kindStyle.Render(kind)
		if i == selected {
			line = selStyle.Render(name+" ") + kindStyle.Render(kind)
		}
		lines = append(lines, line)
	}
	if len(entries) > end {
		lines = append(lines, kindStyle.Render(fmt.Sprintf("… %d more", len(entries)-end)))
	}
	return strings.Join(lines, "\n")
}
