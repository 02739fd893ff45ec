package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/pgtabs/internal/ui/theme"
)

// Severity picks the overlay colour
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// MessageDismissedMsg is sent when the message overlay is closed
type MessageDismissedMsg struct{}

// ConfirmedMsg is sent when a confirmation overlay is accepted
type ConfirmedMsg struct {
	Tag string
}

// MessageOverlay shows a dismissable message. With a Confirm tag it asks a
// yes/no question instead.
type MessageOverlay struct {
	Title    string
	Message  string
	Severity Severity
	Confirm  string
	Visible  bool
	Theme    theme.Theme
	Width    int
}

// NewMessageOverlay creates a hidden overlay
func NewMessageOverlay(th theme.Theme) *MessageOverlay {
	return &MessageOverlay{Theme: th}
}

// Show displays a message
func (o *MessageOverlay) Show(title, message string, sev Severity) {
	o.Title = title
	o.Message = message
	o.Severity = sev
	o.Confirm = ""
	o.Visible = true
}

// Ask displays a confirmation. Accepting it emits ConfirmedMsg{Tag: tag}.
func (o *MessageOverlay) Ask(title, message, tag string) {
	o.Show(title, message, SeverityInfo)
	o.Confirm = tag
}

// Dismiss hides the overlay
func (o *MessageOverlay) Dismiss() {
	o.Visible = false
	o.Confirm = ""
}

// Update consumes keys while visible
func (o *MessageOverlay) Update(msg tea.Msg) (*MessageOverlay, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !o.Visible {
		return o, nil
	}
	if o.Confirm != "" {
		switch key.String() {
		case "enter", "y":
			tag := o.Confirm
			o.Dismiss()
			return o, func() tea.Msg { return ConfirmedMsg{Tag: tag} }
		case "esc", "n":
			o.Dismiss()
			return o, func() tea.Msg { return MessageDismissedMsg{} }
		}
		return o, nil
	}
	switch key.String() {
	case "esc", "enter":
		o.Dismiss()
		return o, func() tea.Msg { return MessageDismissedMsg{} }
	}
	return o, nil
}

// View renders the overlay box
func (o *MessageOverlay) View() string {
	color := o.Theme.Info
	switch o.Severity {
	case SeverityWarning:
		color = o.Theme.Warning
	case SeverityError:
		color = o.Theme.Error
	}

	hint := "enter/esc to dismiss"
	if o.Confirm != "" {
		hint = "enter/y to confirm │ esc/n to cancel"
	}

	body := lipgloss.NewStyle().Bold(true).Foreground(color).Render(o.Title) + "\n\n" +
		o.Message + "\n\n" +
		lipgloss.NewStyle().Foreground(o.Theme.Muted).Italic(true).Render(hint)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2).
		Width(min(max(o.Width/2, 40), 80)).
		Render(body)
}

// LoaderOverlay renders the busy indicator of the workspace loader
type LoaderOverlay struct {
	Spinner spinner.Model
	Theme   theme.Theme
}

// NewLoaderOverlay creates a loader view
func NewLoaderOverlay(th theme.Theme) *LoaderOverlay {
	return &LoaderOverlay{
		Spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		Theme:   th,
	}
}

// View renders message with a cancel hint when the operation can be stopped
func (l *LoaderOverlay) View(message string, cancellable bool) string {
	text := l.Spinner.View() + " " + message
	if cancellable {
		text += "\n" + lipgloss.NewStyle().Foreground(l.Theme.Muted).Italic(true).Render("esc to cancel")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(l.Theme.BorderFocused).
		Padding(1, 3).
		Render(text)
}
