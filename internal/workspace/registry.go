package workspace

import (
	"fmt"

	"pkt.systems/pslog"
)

type observer struct {
	id int
	fn func(TabID)
}

// Registry is the ordered tab collection. Index 0 is the newest tab.
//
// The active tab is tracked by id so prepending never moves the selection.
// Registry is not safe for concurrent use; it is owned by the UI update loop.
type Registry struct {
	tabs      []*Tab
	activeID  TabID
	observers []observer
	nextObs   int
	newTab    func() TabSpec
	log       pslog.Logger
}

// NewRegistry creates an empty registry. newDefault builds the tab that
// replaces the last closed tab.
func NewRegistry(log pslog.Logger, newDefault func() TabSpec) *Registry {
	return &Registry{log: log, newTab: newDefault}
}

// AddTab prepends a tab. The active tab is unchanged, except that the first
// tab of an empty registry becomes active and observers are notified.
func (r *Registry) AddTab(title string, kind Kind, content any, closeable bool) *Tab {
	tab := &Tab{
		ID:        NewTabID(),
		Title:     title,
		Kind:      kind,
		Closeable: closeable,
		Content:   content,
	}
	r.tabs = append([]*Tab{tab}, r.tabs...)
	r.log.Debug("tab added", "tab", tab.ID, "kind", kind.String(), "title", title)
	if r.activeID == "" {
		r.activeID = tab.ID
		r.notify(tab.ID)
	}
	return tab
}

// ActivateTab makes id the active tab and notifies observers. Observers are
// notified even when id was already active.
func (r *Registry) ActivateTab(id TabID) error {
	if r.IndexOf(id) < 0 {
		r.log.Info("activate tab ignored", "tab", id, "reason", "not found")
		return fmt.Errorf("%w: %s", ErrTabNotFound, id)
	}
	r.activeID = id
	r.notify(id)
	return nil
}

// ActivateIndex activates the tab at display position i.
func (r *Registry) ActivateIndex(i int) error {
	if i < 0 || i >= len(r.tabs) {
		return fmt.Errorf("%w: position %d", ErrTabNotFound, i)
	}
	return r.ActivateTab(r.tabs[i].ID)
}

// CloseTab destroys and removes a tab, then picks the next active tab:
// a non-active close keeps the current tab; an emptied registry gets a
// fresh default tab; otherwise the neighbour at p-1, or the new first tab.
func (r *Registry) CloseTab(id TabID) error {
	pos := r.IndexOf(id)
	if pos < 0 {
		return fmt.Errorf("%w: %s", ErrTabNotFound, id)
	}
	tab := r.tabs[pos]
	if !tab.Closeable && tab.Kind == KindConnection && len(r.tabs) == 1 {
		return fmt.Errorf("%w: last connection tab", ErrTabNotCloseable)
	}

	tab.destroy()
	r.tabs = append(r.tabs[:pos:pos], r.tabs[pos+1:]...)
	r.log.Debug("tab closed", "tab", id, "position", pos)

	if len(r.tabs) == 0 {
		r.activeID = ""
		spec := r.newTab()
		r.AddTab(spec.Title, spec.Kind, spec.Content, spec.Closeable)
		return nil
	}
	if r.activeID != id {
		return nil
	}
	r.activeID = ""

	switch {
	case pos == 0:
		return r.ActivateTab(r.tabs[0].ID)
	default:
		return r.ActivateTab(r.tabs[pos-1].ID)
	}
}

// CloseCurrentTab closes the active tab unless it is not closeable.
// It reports whether a tab was closed.
func (r *Registry) CloseCurrentTab() (bool, error) {
	tab := r.ActiveTab()
	if tab == nil {
		return false, nil
	}
	if !tab.Closeable {
		r.log.Info("close tab ignored", "tab", tab.ID, "kind", tab.Kind.String(), "reason", "not closeable")
		return false, nil
	}
	if err := r.CloseTab(tab.ID); err != nil {
		return false, err
	}
	return true, nil
}

// ActiveTab returns the active tab or nil.
func (r *Registry) ActiveTab() *Tab {
	if r.activeID == "" {
		return nil
	}
	return r.Get(r.activeID)
}

// ActiveIndex returns the display position of the active tab, or -1.
func (r *Registry) ActiveIndex() int {
	if r.activeID == "" {
		return -1
	}
	return r.IndexOf(r.activeID)
}

// IsActive reports whether id is the active tab.
func (r *Registry) IsActive(id TabID) bool {
	return id != "" && id == r.activeID
}

// Tabs returns the tabs in display order.
func (r *Registry) Tabs() []*Tab {
	out := make([]*Tab, len(r.tabs))
	copy(out, r.tabs)
	return out
}

// Len returns the number of tabs.
func (r *Registry) Len() int {
	return len(r.tabs)
}

// Get returns the tab with the given id or nil.
func (r *Registry) Get(id TabID) *Tab {
	if i := r.IndexOf(id); i >= 0 {
		return r.tabs[i]
	}
	return nil
}

// IndexOf returns the display position of id, or -1.
func (r *Registry) IndexOf(id TabID) int {
	for i, t := range r.tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// FindKind returns the first tab of the given kind in display order.
func (r *Registry) FindKind(kind Kind) *Tab {
	for _, t := range r.tabs {
		if t.Kind == kind {
			return t
		}
	}
	return nil
}

// SetTitle renames a tab.
func (r *Registry) SetTitle(id TabID, title string) error {
	tab := r.Get(id)
	if tab == nil {
		return fmt.Errorf("%w: %s", ErrTabNotFound, id)
	}
	tab.Title = title
	return nil
}

// Subscribe registers fn for tab change notifications. Observers run in
// subscription order. The returned func detaches fn.
func (r *Registry) Subscribe(fn func(TabID)) (cancel func()) {
	r.nextObs++
	id := r.nextObs
	r.observers = append(r.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range r.observers {
			if o.id == id {
				r.observers = append(r.observers[:i:i], r.observers[i+1:]...)
				return
			}
		}
	}
}

func (r *Registry) notify(id TabID) {
	for _, o := range r.observers {
		o.fn(id)
	}
}
