package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/pgtabs/internal/ui/theme"
)

const (
	minColumnWidth = 6
	maxColumnWidth = 40
)

// TableView displays table data with virtual scrolling
type TableView struct {
	Columns []string
	Rows    [][]string
	Width   int
	Height  int
	Theme   theme.Theme

	// Virtual scrolling state
	TopRow      int
	VisibleRows int
	SelectedRow int
	TotalRows   int

	// Column widths (calculated)
	ColumnWidths []int
}

// NewTableView creates a new table view
func NewTableView(th theme.Theme) *TableView {
	return &TableView{Theme: th}
}

// SetData replaces the table data and resets scrolling
func (tv *TableView) SetData(columns []string, rows [][]string, totalRows int) {
	tv.Columns = columns
	tv.Rows = rows
	tv.TotalRows = totalRows
	tv.TopRow = 0
	tv.SelectedRow = 0
	tv.calculateColumnWidths()
}

// AppendRows adds the next page
func (tv *TableView) AppendRows(rows [][]string, totalRows int) {
	tv.Rows = append(tv.Rows, rows...)
	tv.TotalRows = totalRows
	tv.calculateColumnWidths()
}

// Clear removes all data
func (tv *TableView) Clear() {
	tv.SetData(nil, nil, 0)
}

// NeedsMore reports whether the selection is close enough to the end of the
// loaded rows to fetch the next page.
func (tv *TableView) NeedsMore() bool {
	return len(tv.Rows) < tv.TotalRows && tv.SelectedRow >= len(tv.Rows)-10
}

func (tv *TableView) calculateColumnWidths() {
	tv.ColumnWidths = make([]int, len(tv.Columns))
	for i, col := range tv.Columns {
		tv.ColumnWidths[i] = runewidth.StringWidth(col)
	}
	for _, row := range tv.Rows {
		for i, cell := range row {
			if i < len(tv.ColumnWidths) {
				tv.ColumnWidths[i] = max(tv.ColumnWidths[i], runewidth.StringWidth(cell))
			}
		}
	}
	for i := range tv.ColumnWidths {
		tv.ColumnWidths[i] = min(max(tv.ColumnWidths[i], minColumnWidth), maxColumnWidth)
	}
}

// View renders the table
func (tv *TableView) View() string {
	style := lipgloss.NewStyle().Width(tv.Width).Height(tv.Height)
	if len(tv.Columns) == 0 {
		return style.Foreground(tv.Theme.Muted).Render("No data")
	}

	var b strings.Builder
	b.WriteString(tv.renderHeader())
	b.WriteString("\n")
	b.WriteString(tv.renderSeparator())
	b.WriteString("\n")

	// Header + separator + status
	tv.VisibleRows = max(tv.Height-3, 1)

	endRow := min(tv.TopRow+tv.VisibleRows, len(tv.Rows))
	for i := tv.TopRow; i < endRow; i++ {
		b.WriteString(tv.renderRow(tv.Rows[i], i == tv.SelectedRow))
		b.WriteString("\n")
	}

	b.WriteString(tv.renderStatus())
	return style.Render(b.String())
}

func (tv *TableView) renderHeader() string {
	parts := make([]string, len(tv.Columns))
	for i, col := range tv.Columns {
		parts[i] = pad(col, tv.ColumnWidths[i])
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(tv.Theme.TableHeader).
		Render(" " + strings.Join(parts, " │ ") + " ")
}

func (tv *TableView) renderSeparator() string {
	parts := make([]string, len(tv.ColumnWidths))
	for i, width := range tv.ColumnWidths {
		parts[i] = strings.Repeat("─", width)
	}
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Border).
		Render("─" + strings.Join(parts, "─┼─") + "─")
}

func (tv *TableView) renderRow(row []string, selected bool) string {
	parts := make([]string, 0, len(row))
	for i, cell := range row {
		if i >= len(tv.ColumnWidths) {
			break
		}
		parts = append(parts, pad(cell, tv.ColumnWidths[i]))
	}

	line := " " + strings.Join(parts, " │ ") + " "
	if selected {
		return lipgloss.NewStyle().
			Background(tv.Theme.TableRowSelected).
			Bold(true).
			Render(line)
	}
	return line
}

func (tv *TableView) renderStatus() string {
	first := 0
	if len(tv.Rows) > 0 {
		first = tv.SelectedRow + 1
	}
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Muted).
		Italic(true).
		Render(fmt.Sprintf(" row %d of %d (%d loaded)", first, tv.TotalRows, len(tv.Rows)))
}

// pad fits s into width terminal cells
func pad(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// MoveSelection moves the selection up or down
func (tv *TableView) MoveSelection(delta int) {
	if len(tv.Rows) == 0 {
		return
	}
	tv.SelectedRow = min(max(tv.SelectedRow+delta, 0), len(tv.Rows)-1)

	// Adjust visible window if needed
	if tv.SelectedRow < tv.TopRow {
		tv.TopRow = tv.SelectedRow
	}
	if tv.VisibleRows > 0 && tv.SelectedRow >= tv.TopRow+tv.VisibleRows {
		tv.TopRow = tv.SelectedRow - tv.VisibleRows + 1
	}
}

// PageUp/PageDown
func (tv *TableView) PageUp() {
	tv.MoveSelection(-max(tv.VisibleRows, 1))
}

func (tv *TableView) PageDown() {
	tv.MoveSelection(max(tv.VisibleRows, 1))
}
