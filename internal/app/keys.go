package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/rebeliceyang/pgtabs/internal/config"
	"github.com/rebeliceyang/pgtabs/internal/ui/help"
)

// KeyMap holds the global bindings of the workspace
type KeyMap struct {
	NextTab       key.Binding
	PrevTab       key.Binding
	QuickSwitcher key.Binding
	NewConnection key.Binding
	CloseTab      key.Binding
	LoginTab      key.Binding
	Help          key.Binding
	NextTable     key.Binding
	PrevTable     key.Binding
	CopyTableName key.Binding
	Quit          key.Binding
	Shortcuts     [9]key.Binding
}

func binding(keys, defaults []string, desc string) key.Binding {
	if len(keys) == 0 {
		keys = defaults
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(strings.Join(keys, "/"), desc))
}

// NewKeyMap builds the bindings, applying config overrides
func NewKeyMap(k config.KeysConfig) KeyMap {
	km := KeyMap{
		NextTab:       binding(k.NextTab, []string{"alt+right", "ctrl+pgdown"}, "next tab"),
		PrevTab:       binding(k.PrevTab, []string{"alt+left", "ctrl+pgup"}, "previous tab"),
		QuickSwitcher: binding(k.QuickSwitcher, []string{"ctrl+t"}, "go to table"),
		NewConnection: binding(k.NewConnection, []string{"ctrl+n"}, "new connection with the same options"),
		CloseTab:      binding(k.CloseTab, []string{"ctrl+w"}, "close tab"),
		LoginTab:      binding(k.LoginTab, []string{"ctrl+l"}, "connection tab"),
		Help:          binding(k.Help, []string{"f1"}, "help"),
		NextTable:     binding(k.NextTable, []string{"alt+down"}, "next table"),
		PrevTable:     binding(k.PrevTable, []string{"alt+up"}, "previous table"),
		CopyTableName: binding(k.CopyTableName, []string{"ctrl+y"}, "copy table name (switcher)"),
		Quit:          key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
	for i := range km.Shortcuts {
		name := fmt.Sprintf("alt+%d", i+1)
		km.Shortcuts[i] = key.NewBinding(key.WithKeys(name), key.WithHelp(name, fmt.Sprintf("tab %d", i+1)))
	}
	return km
}

// HelpSections lists the bindings for the Help tab
func (km KeyMap) HelpSections() []help.Section {
	return []help.Section{
		{
			Title: "Tabs",
			Bindings: append(help.FromKeys(km.NextTab, km.PrevTab, km.CloseTab, km.LoginTab, km.Help),
				help.KeyBinding{Key: "alt+1..alt+9", Description: "activate tab by position"}),
		},
		{
			Title:    "Database",
			Bindings: help.FromKeys(km.QuickSwitcher, km.NextTable, km.PrevTable, km.NewConnection, km.CopyTableName),
		},
		{
			Title: "Import",
			Bindings: []help.KeyBinding{
				{Key: "drop / paste", Description: "run a .sql file in the active database tab"},
				{Key: "esc", Description: "cancel a running connect or import"},
			},
		},
		{
			Title:    "General",
			Bindings: help.FromKeys(km.Quit),
		},
	}
}
