package components

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/pgtabs/internal/models"
	"github.com/rebeliceyang/pgtabs/internal/ui/theme"
)

// ConnectRequestMsg asks the controller to open a connection in a new tab
type ConnectRequestMsg struct {
	Config models.ConnectionConfig
	Name   string
	// SavedID is set when the request comes from a saved connection, so the
	// password can be read from the keyring.
	SavedID string
}

// DeleteSavedMsg asks the controller to forget a saved connection
type DeleteSavedMsg struct {
	ID string
}

const (
	fieldName = iota
	fieldHost
	fieldPort
	fieldDatabase
	fieldUser
	fieldPassword
	fieldSSLMode
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Host", "Port", "Database", "User", "Password", "SSL mode"}

// ActivityItem is one line of the recent activity list
type ActivityItem struct {
	OK   bool
	Text string
}

// ConnectionForm is the content of a login tab: saved connections,
// discovered instances and a manual entry form.
type ConnectionForm struct {
	Theme       theme.Theme
	Width       int
	Height      int
	DefaultUser string
	SSLMode     string
	// Prefill seeds a new manual form.
	Prefill *models.ConnectionConfig

	Saved       []models.ConnectionHistoryEntry
	Discovered  []models.DiscoveredInstance
	Discovering bool
	Activity    []ActivityItem

	ManualMode  bool
	Selected    int
	ActiveField int
	Inputs      [fieldCount]textinput.Model
	Err         string
}

// NewConnectionForm creates a login form in list mode
func NewConnectionForm(th theme.Theme) *ConnectionForm {
	f := &ConnectionForm{Theme: th, SSLMode: models.DefaultSSLMode, Discovering: true}
	for i := range f.Inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		f.Inputs[i] = ti
	}
	f.Inputs[fieldHost].Placeholder = models.DefaultHost
	f.Inputs[fieldPort].Placeholder = strconv.Itoa(models.DefaultPort)
	f.Inputs[fieldDatabase].Placeholder = models.DefaultDatabase
	f.Inputs[fieldName].Placeholder = "optional"
	f.Inputs[fieldSSLMode].Placeholder = models.DefaultSSLMode
	f.Inputs[fieldPassword].EchoMode = textinput.EchoPassword
	f.Inputs[fieldPassword].EchoCharacter = '•'
	f.Inputs[fieldPort].Validate = func(s string) error {
		if s == "" {
			return nil
		}
		if _, err := strconv.Atoi(s); err != nil {
			return errors.New("port must be a number")
		}
		return nil
	}
	return f
}

// SetSaved replaces the saved connections list
func (f *ConnectionForm) SetSaved(entries []models.ConnectionHistoryEntry) {
	f.Saved = entries
	f.clampSelection()
}

// SetActivity replaces the recent activity lines
func (f *ConnectionForm) SetActivity(items []ActivityItem) {
	f.Activity = items
}

// SetDiscovered replaces the discovered instances list
func (f *ConnectionForm) SetDiscovered(instances []models.DiscoveredInstance) {
	f.Discovered = instances
	f.Discovering = false
	f.clampSelection()
}

func (f *ConnectionForm) itemCount() int {
	return len(f.Saved) + len(f.Discovered)
}

func (f *ConnectionForm) clampSelection() {
	f.Selected = min(max(f.Selected, 0), max(f.itemCount()-1, 0))
}

// StartManual switches to the manual form, optionally prefilled
func (f *ConnectionForm) StartManual(prefill *models.ConnectionConfig) tea.Cmd {
	f.ManualMode = true
	f.Err = ""
	for i := range f.Inputs {
		f.Inputs[i].SetValue("")
	}
	if prefill != nil {
		f.Inputs[fieldName].SetValue(prefill.Name)
		f.Inputs[fieldHost].SetValue(prefill.Host)
		if prefill.Port != 0 {
			f.Inputs[fieldPort].SetValue(strconv.Itoa(prefill.Port))
		}
		f.Inputs[fieldDatabase].SetValue(prefill.Database)
		f.Inputs[fieldUser].SetValue(prefill.User)
		f.Inputs[fieldPassword].SetValue(prefill.Password)
		f.Inputs[fieldSSLMode].SetValue(prefill.SSLMode)
	}
	if f.Inputs[fieldUser].Value() == "" {
		f.Inputs[fieldUser].SetValue(f.DefaultUser)
	}
	return f.focusField(fieldHost)
}

func (f *ConnectionForm) focusField(i int) tea.Cmd {
	f.ActiveField = (i + fieldCount) % fieldCount
	for j := range f.Inputs {
		f.Inputs[j].Blur()
	}
	return f.Inputs[f.ActiveField].Focus()
}

// SelectedConfig returns the config of the highlighted list item
func (f *ConnectionForm) SelectedConfig() (ConnectRequestMsg, bool) {
	if f.itemCount() == 0 {
		return ConnectRequestMsg{}, false
	}
	if f.Selected < len(f.Saved) {
		e := f.Saved[f.Selected]
		return ConnectRequestMsg{Config: e.ToConnectionConfig(), Name: e.Name, SavedID: e.ID}, true
	}
	inst := f.Discovered[f.Selected-len(f.Saved)]
	cfg := models.ConnectionConfig{
		Host:    inst.Host,
		Port:    inst.Port,
		User:    f.DefaultUser,
		SSLMode: f.SSLMode,
	}
	return ConnectRequestMsg{Config: cfg.WithDefaults()}, true
}

// ManualConfig validates the manual fields
func (f *ConnectionForm) ManualConfig() (ConnectRequestMsg, error) {
	value := func(i int) string { return strings.TrimSpace(f.Inputs[i].Value()) }

	port := models.DefaultPort
	if p := value(fieldPort); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > 65535 {
			return ConnectRequestMsg{}, fmt.Errorf("invalid port %q", p)
		}
		port = n
	}
	if value(fieldUser) == "" {
		return ConnectRequestMsg{}, errors.New("user is required")
	}
	sslMode := value(fieldSSLMode)
	if sslMode == "" {
		sslMode = f.SSLMode
	}

	cfg := models.ConnectionConfig{
		Name:     value(fieldName),
		Host:     value(fieldHost),
		Port:     port,
		Database: value(fieldDatabase),
		User:     value(fieldUser),
		Password: f.Inputs[fieldPassword].Value(),
		SSLMode:  sslMode,
	}
	return ConnectRequestMsg{Config: cfg.WithDefaults(), Name: cfg.Name}, nil
}

// Update handles keys for the login tab
func (f *ConnectionForm) Update(msg tea.Msg) (*ConnectionForm, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if f.ManualMode {
			var cmd tea.Cmd
			f.Inputs[f.ActiveField], cmd = f.Inputs[f.ActiveField].Update(msg)
			return f, cmd
		}
		return f, nil
	}

	if f.ManualMode {
		return f.updateManual(key)
	}

	switch key.String() {
	case "up", "k":
		f.Selected--
		f.clampSelection()
	case "down", "j":
		f.Selected++
		f.clampSelection()
	case "m", "n":
		return f, f.StartManual(f.Prefill)
	case "e":
		if req, ok := f.SelectedConfig(); ok {
			cfg := req.Config
			cfg.Name = req.Name
			return f, f.StartManual(&cfg)
		}
	case "d", "delete":
		if f.Selected < len(f.Saved) {
			id := f.Saved[f.Selected].ID
			return f, func() tea.Msg { return DeleteSavedMsg{ID: id} }
		}
	case "enter":
		if req, ok := f.SelectedConfig(); ok {
			return f, func() tea.Msg { return req }
		}
	}
	return f, nil
}

func (f *ConnectionForm) updateManual(key tea.KeyMsg) (*ConnectionForm, tea.Cmd) {
	switch key.String() {
	case "esc":
		f.ManualMode = false
		f.Err = ""
		for i := range f.Inputs {
			f.Inputs[i].Blur()
		}
		return f, nil
	case "tab", "down":
		return f, f.focusField(f.ActiveField + 1)
	case "shift+tab", "up":
		return f, f.focusField(f.ActiveField - 1)
	case "enter":
		req, err := f.ManualConfig()
		if err != nil {
			f.Err = err.Error()
			return f, nil
		}
		f.Err = ""
		return f, func() tea.Msg { return req }
	}

	var cmd tea.Cmd
	f.Inputs[f.ActiveField], cmd = f.Inputs[f.ActiveField].Update(key)
	return f, cmd
}

// View renders the login tab
func (f *ConnectionForm) View() string {
	var content string
	if f.ManualMode {
		content = f.renderManual()
	} else {
		content = f.renderList()
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(f.Theme.BorderFocused).
		Padding(1, 2).
		Width(min(max(f.Width-4, 40), 80))
	box := style.Render(content)
	if f.Width <= 0 || f.Height <= 0 {
		return box
	}
	return lipgloss.Place(f.Width, f.Height, lipgloss.Center, lipgloss.Center, box)
}

func (f *ConnectionForm) renderList() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(f.Theme.BorderFocused)
	sectionStyle := lipgloss.NewStyle().Foreground(f.Theme.Info)
	mutedStyle := lipgloss.NewStyle().Foreground(f.Theme.Muted)
	selStyle := lipgloss.NewStyle().Background(f.Theme.Selection).Bold(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Connect to PostgreSQL"))
	b.WriteString("\n\n")

	row := func(i int, text string) {
		if i == f.Selected {
			b.WriteString(selStyle.Render("> " + text))
		} else {
			b.WriteString("  " + text)
		}
		b.WriteString("\n")
	}

	if len(f.Saved) > 0 {
		b.WriteString(sectionStyle.Render("Saved connections"))
		b.WriteString("\n")
		for i, e := range f.Saved {
			label := e.ToConnectionConfig().String()
			if e.Name != "" {
				label = e.Name + "  " + mutedStyle.Render(label)
			}
			row(i, label)
		}
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Discovered instances"))
	b.WriteString("\n")
	switch {
	case f.Discovering:
		b.WriteString(mutedStyle.Render("  Discovering PostgreSQL instances..."))
		b.WriteString("\n")
	case len(f.Discovered) == 0:
		b.WriteString(mutedStyle.Render("  None found"))
		b.WriteString("\n")
	}
	for i, inst := range f.Discovered {
		row(len(f.Saved)+i, fmt.Sprintf("%s:%d %s", inst.Host, inst.Port, mutedStyle.Render("("+inst.Source.String()+")")))
	}

	if len(f.Activity) > 0 {
		okStyle := lipgloss.NewStyle().Foreground(f.Theme.Success)
		failStyle := lipgloss.NewStyle().Foreground(f.Theme.Error)
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Recent activity"))
		b.WriteString("\n")
		for _, item := range f.Activity {
			mark := okStyle.Render("✓")
			if !item.OK {
				mark = failStyle.Render("✗")
			}
			b.WriteString("  " + mark + " " + mutedStyle.Render(item.Text) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Italic(true).Render("↑/↓ select │ enter connect │ m manual │ e edit │ d forget"))
	return b.String()
}

func (f *ConnectionForm) renderManual() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(f.Theme.BorderFocused)
	labelStyle := lipgloss.NewStyle().Width(10)
	activeLabel := labelStyle.Foreground(f.Theme.BorderFocused).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(f.Theme.Muted)

	var b strings.Builder
	b.WriteString(titleStyle.Render("New connection"))
	b.WriteString("\n\n")
	for i := range f.Inputs {
		style := labelStyle
		if i == f.ActiveField {
			style = activeLabel
		}
		b.WriteString(style.Render(fieldLabels[i]))
		b.WriteString(" ")
		b.WriteString(f.Inputs[i].View())
		b.WriteString("\n")
	}
	if f.Err != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(f.Theme.Error).Render(f.Err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Italic(true).Render("tab next field │ enter connect │ esc back"))
	return b.String()
}
