package components

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/pgtabs/internal/models"
	"github.com/rebeliceyang/pgtabs/internal/switcher"
	"github.com/rebeliceyang/pgtabs/internal/ui/theme"
	"github.com/rebeliceyang/pgtabs/internal/workspace"
)

const tableListWidth = 32

// DataSource is what a database screen reads from
type DataSource interface {
	switcher.CatalogProvider
	TableData(ctx context.Context, schema, table string, offset, limit int) (*models.TableData, error)
}

// TablesLoadedMsg carries the relation list of one screen
type TablesLoadedMsg struct {
	TabID   workspace.TabID
	Catalog models.Catalog
	Err     error
}

// TableDataMsg carries one page of rows for one screen
type TableDataMsg struct {
	TabID  workspace.TabID
	Schema string
	Name   string
	Offset int
	Data   *models.TableData
	Err    error
}

// TitleChangedMsg asks the controller to retitle a tab
type TitleChangedMsg struct {
	TabID workspace.TabID
	Title string
}

// DBScreenOptions configures a database screen
type DBScreenOptions struct {
	Context       context.Context
	ConnID        string
	Name          string
	Config        models.ConnectionConfig
	Source        DataSource
	Theme         theme.Theme
	Limit         int
	DefaultSchema string
	Locale        string
	// OnDestroy releases the session, typically closing its pool.
	OnDestroy func()
}

// DBScreen is the content of a database tab: a relation list and the rows
// of the open relation.
type DBScreen struct {
	TabID  workspace.TabID
	ConnID string
	Name   string
	Config models.ConnectionConfig
	Source DataSource
	Theme  theme.Theme
	Width  int
	Height int
	Err    string

	ctx           context.Context
	limit         int
	defaultSchema string
	locale        string

	entries []switcher.Entry
	current int
	loading bool
	table   *TableView

	onDestroy   func()
	destroyOnce sync.Once
}

// NewDBScreen creates a screen. TabID is set by the controller once the
// tab exists.
func NewDBScreen(opts DBScreenOptions) *DBScreen {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	return &DBScreen{
		ConnID:        opts.ConnID,
		Name:          opts.Name,
		Config:        opts.Config,
		Source:        opts.Source,
		Theme:         opts.Theme,
		ctx:           ctx,
		limit:         limit,
		defaultSchema: opts.DefaultSchema,
		locale:        opts.Locale,
		current:       -1,
		table:         NewTableView(opts.Theme),
		onDestroy:     opts.OnDestroy,
	}
}

// Init loads the relation list
func (s *DBScreen) Init() tea.Cmd {
	id, src, ctx := s.TabID, s.Source, s.ctx
	return func() tea.Msg {
		catalog, err := src.ListSchemasAndTables(ctx)
		return TablesLoadedMsg{TabID: id, Catalog: catalog, Err: err}
	}
}

// Destroy releases the session. It is safe to call more than once.
func (s *DBScreen) Destroy() {
	s.destroyOnce.Do(func() {
		if s.onDestroy != nil {
			s.onDestroy()
		}
	})
}

// SetOnDestroy replaces the release callback
func (s *DBScreen) SetOnDestroy(fn func()) {
	s.onDestroy = fn
}

// BaseTitle is the tab title without the open relation
func (s *DBScreen) BaseTitle() string {
	return s.Config.TabTitle(s.Name)
}

// Title is the tab title for the current state
func (s *DBScreen) Title() string {
	if e, ok := s.CurrentTable(); ok {
		return s.BaseTitle() + ": " + e.DisplayName
	}
	return s.BaseTitle()
}

// CurrentTable returns the open relation
func (s *DBScreen) CurrentTable() (switcher.Entry, bool) {
	if s.current < 0 || s.current >= len(s.entries) {
		return switcher.Entry{}, false
	}
	return s.entries[s.current], true
}

// Entries returns the relation list
func (s *DBScreen) Entries() []switcher.Entry {
	return s.entries
}

// Table exposes the data grid
func (s *DBScreen) Table() *TableView {
	return s.table
}

// OpenTable shows schema.name. Relations missing from the list are still
// opened; the list may be stale.
func (s *DBScreen) OpenTable(schema, name string) tea.Cmd {
	s.current = -1
	for i, e := range s.entries {
		if e.Schema == schema && e.Name == name {
			s.current = i
			break
		}
	}
	if s.current < 0 {
		display := name
		if schema != s.defaultSchema {
			display = schema + "." + name
		}
		s.entries = append(s.entries, switcher.Entry{Schema: schema, Name: name, DisplayName: display})
		s.current = len(s.entries) - 1
	}
	s.table.Clear()
	s.Err = ""
	return tea.Batch(s.load(schema, name, 0), s.titleCmd())
}

// NextTable opens the relation after the current one, wrapping around
func (s *DBScreen) NextTable() tea.Cmd {
	return s.step(1)
}

// PrevTable opens the relation before the current one, wrapping around
func (s *DBScreen) PrevTable() tea.Cmd {
	return s.step(-1)
}

func (s *DBScreen) step(delta int) tea.Cmd {
	n := len(s.entries)
	if n == 0 {
		return nil
	}
	next := 0
	if s.current >= 0 {
		next = ((s.current+delta)%n + n) % n
	} else if delta < 0 {
		next = n - 1
	}
	e := s.entries[next]
	return s.OpenTable(e.Schema, e.Name)
}

func (s *DBScreen) titleCmd() tea.Cmd {
	msg := TitleChangedMsg{TabID: s.TabID, Title: s.Title()}
	return func() tea.Msg { return msg }
}

func (s *DBScreen) load(schema, name string, offset int) tea.Cmd {
	s.loading = true
	id, src, ctx, limit := s.TabID, s.Source, s.ctx, s.limit
	return func() tea.Msg {
		data, err := src.TableData(ctx, schema, name, offset, limit)
		return TableDataMsg{TabID: id, Schema: schema, Name: name, Offset: offset, Data: data, Err: err}
	}
}

// Update handles the messages addressed to this screen and navigation keys
func (s *DBScreen) Update(msg tea.Msg) (*DBScreen, tea.Cmd) {
	switch msg := msg.(type) {
	case TablesLoadedMsg:
		if msg.TabID != s.TabID {
			return s, nil
		}
		if msg.Err != nil {
			s.Err = fmt.Sprintf("load tables: %v", msg.Err)
			return s, nil
		}
		current, hasCurrent := s.CurrentTable()
		s.entries = switcher.Flatten(msg.Catalog, s.defaultSchema, switcher.NewCollator(s.locale))
		s.current = -1
		if hasCurrent {
			for i, e := range s.entries {
				if e.Schema == current.Schema && e.Name == current.Name {
					s.current = i
				}
			}
		}
		return s, nil

	case TableDataMsg:
		cur, ok := s.CurrentTable()
		if msg.TabID != s.TabID || !ok || cur.Schema != msg.Schema || cur.Name != msg.Name {
			return s, nil
		}
		s.loading = false
		if msg.Err != nil {
			s.Err = msg.Err.Error()
			return s, nil
		}
		total := int(msg.Data.TotalRows)
		switch {
		case msg.Offset == 0:
			s.table.SetData(msg.Data.Columns, msg.Data.Rows, total)
		case msg.Offset == len(s.table.Rows):
			s.table.AppendRows(msg.Data.Rows, total)
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.table.MoveSelection(-1)
		case "down", "j":
			s.table.MoveSelection(1)
		case "pgup", "ctrl+u":
			s.table.PageUp()
		case "pgdown", "ctrl+d":
			s.table.PageDown()
		case "home", "g":
			s.table.MoveSelection(-len(s.table.Rows))
		case "end", "G":
			s.table.MoveSelection(len(s.table.Rows))
		default:
			return s, nil
		}
		return s, s.maybeLoadMore()

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			s.table.MoveSelection(-3)
		case tea.MouseButtonWheelDown:
			s.table.MoveSelection(3)
			return s, s.maybeLoadMore()
		}
	}
	return s, nil
}

func (s *DBScreen) maybeLoadMore() tea.Cmd {
	cur, ok := s.CurrentTable()
	if !ok || s.loading || !s.table.NeedsMore() {
		return nil
	}
	return s.load(cur.Schema, cur.Name, len(s.table.Rows))
}

// View renders the list and the grid side by side
func (s *DBScreen) View() string {
	listWidth := min(tableListWidth, max(s.Width/3, 12))
	height := max(s.Height, 5)

	list := Panel{
		Title:   s.BaseTitle(),
		Content: s.renderList(listWidth-4, height-3),
		Width:   listWidth,
		Height:  height,
		Theme:   s.Theme,
	}

	s.table.Width = max(s.Width-listWidth-4, 10)
	s.table.Height = max(height-2, 3)
	var body string
	switch {
	case s.Err != "":
		body = lipgloss.NewStyle().Foreground(s.Theme.Error).Render(s.Err)
	case s.current < 0:
		body = lipgloss.NewStyle().Foreground(s.Theme.Muted).Render("Pick a table with ctrl+t or alt+↓")
	default:
		body = s.table.View()
	}
	grid := Panel{
		Content: body,
		Width:   max(s.Width-listWidth, 12),
		Height:  height,
		Focused: true,
		Theme:   s.Theme,
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, list.View(), grid.View())
}

func (s *DBScreen) renderList(width, height int) string {
	if len(s.entries) == 0 {
		return lipgloss.NewStyle().Foreground(s.Theme.Muted).Render("Loading...")
	}
	start := 0
	if s.current >= height {
		start = s.current - height + 1
	}
	end := min(start+height, len(s.entries))
	lines := make([]string, 0, end-start)
	sel := lipgloss.NewStyle().Background(s.Theme.Selection).Bold(true)
	for i := start; i < end; i++ {
		name := runewidth.Truncate(s.entries[i].DisplayName, max(width, 4), "…")
		if i == s.current {
			name = sel.Render(runewidth.FillRight(name, max(width, 4)))
		}
		lines = append(lines, name)
	}
	return strings.Join(lines, "\n")
}
