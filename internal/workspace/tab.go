package workspace

import "github.com/google/uuid"

// TabID identifies a tab for its whole lifetime. It never encodes a position.
type TabID string

// NewTabID returns a fresh random tab id.
func NewTabID() TabID {
	return TabID(uuid.NewString())
}

// Kind discriminates what a tab hosts.
type Kind int

const (
	KindConnection Kind = iota
	KindDatabase
	KindHelp
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindDatabase:
		return "database"
	case KindHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Destroyer is implemented by tab content that holds resources.
type Destroyer interface {
	Destroy()
}

// Tab is one workspace unit.
type Tab struct {
	ID        TabID
	Title     string
	Color     string
	Kind      Kind
	Closeable bool
	Content   any
}

// TabSpec describes a tab to be created.
type TabSpec struct {
	Title     string
	Kind      Kind
	Content   any
	Closeable bool
}

func (t *Tab) destroy() {
	if d, ok := t.Content.(Destroyer); ok {
		d.Destroy()
	}
}
