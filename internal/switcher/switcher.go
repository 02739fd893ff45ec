// Package switcher implements the quick table switcher: it loads a catalog
// once per open, filters it incrementally and reports the picked relation.
package switcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/rebeliceyang/pgtabs/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// EmptyPlaceholder is shown when no entry matches the query.
const EmptyPlaceholder = "No tables found"

// ErrNoSession is returned by Open when there is no database session to list tables from.
var ErrNoSession = errors.New("quick switcher needs an open database session")

// CatalogLoadError reports a failed catalog fetch.
type CatalogLoadError struct {
	Err error
}

func (e *CatalogLoadError) Error() string {
	return fmt.Sprintf("load tables: %v", e.Err)
}

func (e *CatalogLoadError) Unwrap() error {
	return e.Err
}

// CatalogProvider lists relations per schema.
type CatalogProvider interface {
	ListSchemasAndTables(ctx context.Context) (models.Catalog, error)
}

type State int

const (
	StateClosed State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Entry is one relation in the switcher list.
type Entry struct {
	Schema      string
	Name        string
	Kind        string
	DisplayName string
}

// Qualified returns schema.name.
func (e Entry) Qualified() string {
	return e.Schema + "." + e.Name
}

// KindLabel returns the short relation type label.
func (e Entry) KindLabel() string {
	return models.KindLabel(e.Kind)
}

// Selection is what the switcher reports on enter.
type Selection struct {
	Schema string
	Name   string
}

// Switcher holds one dialog session. It is not safe for concurrent use.
type Switcher struct {
	state         State
	all           []Entry
	filtered      []Entry
	query         string
	selected      int
	defaultSchema string
	collator      *collate.Collator
}

// New returns a closed switcher. Names in defaultSchema are shown unqualified;
// locale picks the collation used for sorting.
func New(defaultSchema, locale string) *Switcher {
	if defaultSchema == "" {
		defaultSchema = "public"
	}
	return &Switcher{
		defaultSchema: defaultSchema,
		collator:      NewCollator(locale),
	}
}

// Open starts a session. Without a database session the switcher stays closed.
func (s *Switcher) Open(hasSession bool) error {
	if !hasSession {
		return ErrNoSession
	}
	s.reset()
	s.state = StateLoading
	return nil
}

// Load fetches the catalog. It does not touch switcher state so it can run
// off the update loop; feed the result to Loaded or LoadFailed.
func Load(ctx context.Context, provider CatalogProvider) (models.Catalog, error) {
	return provider.ListSchemasAndTables(ctx)
}

// Loaded fills the list from catalog. Results arriving after a cancel are dropped.
func (s *Switcher) Loaded(catalog models.Catalog) bool {
	if s.state != StateLoading {
		return false
	}

	entries := Flatten(catalog, s.defaultSchema, s.collator)
	s.all = entries
	s.filtered = entries
	s.selected = 0
	s.state = StateReady
	return true
}

// Flatten turns a catalog into entries sorted by display name. Relations in
// defaultSchema are shown without their schema prefix.
func Flatten(catalog models.Catalog, defaultSchema string, collator *collate.Collator) []Entry {
	schemas := make([]string, 0, len(catalog))
	for schema := range catalog {
		schemas = append(schemas, schema)
	}
	sort.Strings(schemas)

	var entries []Entry
	for _, schema := range schemas {
		for _, t := range catalog[schema] {
			display := t.Name
			if schema != defaultSchema {
				display = schema + "." + t.Name
			}
			entries = append(entries, Entry{
				Schema:      schema,
				Name:        t.Name,
				Kind:        t.Type,
				DisplayName: display,
			})
		}
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return collator.CompareString(a.DisplayName, b.DisplayName)
	})
	return entries
}

// NewCollator returns the collator for locale, falling back to English.
func NewCollator(locale string) *collate.Collator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return collate.New(tag)
}

// LoadFailed closes the switcher and wraps err for display.
func (s *Switcher) LoadFailed(err error) error {
	s.reset()
	return &CatalogLoadError{Err: err}
}

// SetQuery refilters the list. Prefix matches on the display name come
// first, then prefix matches on the bare name, then the rest, each group
// in collation order. The empty query restores the loaded order.
func (s *Switcher) SetQuery(q string) {
	s.query = q
	s.selected = 0
	if s.state != StateReady {
		return
	}
	if q == "" {
		s.filtered = s.all
		return
	}

	needle := strings.ToLower(q)
	type ranked struct {
		entry   Entry
		rank    int
		display string
	}
	var matches []ranked
	for _, e := range s.all {
		display := strings.ToLower(e.DisplayName)
		name := strings.ToLower(e.Name)
		if !strings.Contains(display, needle) && !strings.Contains(name, needle) {
			continue
		}
		rank := 2
		switch {
		case strings.HasPrefix(display, needle):
			rank = 0
		case strings.HasPrefix(name, needle):
			rank = 1
		}
		matches = append(matches, ranked{entry: e, rank: rank, display: display})
	}
	slices.SortStableFunc(matches, func(a, b ranked) int {
		if a.rank != b.rank {
			return a.rank - b.rank
		}
		return s.collator.CompareString(a.display, b.display)
	})

	s.filtered = make([]Entry, len(matches))
	for i, m := range matches {
		s.filtered[i] = m.entry
	}
}

// SelectNext moves the highlight down with wraparound.
func (s *Switcher) SelectNext() {
	if n := len(s.filtered); n > 0 {
		s.selected = (s.selected + 1) % n
	}
}

// SelectPrevious moves the highlight up with wraparound.
func (s *Switcher) SelectPrevious() {
	if n := len(s.filtered); n > 0 {
		s.selected = (s.selected - 1 + n) % n
	}
}

// SelectIndex moves the highlight to i if it is in range.
func (s *Switcher) SelectIndex(i int) {
	if i >= 0 && i < len(s.filtered) {
		s.selected = i
	}
}

// SelectCurrent reports the highlighted relation and closes the switcher.
// It does nothing while loading or when nothing matches.
func (s *Switcher) SelectCurrent() (Selection, bool) {
	e, ok := s.Current()
	if !ok {
		return Selection{}, false
	}
	s.reset()
	return Selection{Schema: e.Schema, Name: e.Name}, true
}

// Current returns the highlighted entry.
func (s *Switcher) Current() (Entry, bool) {
	if s.state != StateReady || len(s.filtered) == 0 {
		return Entry{}, false
	}
	return s.filtered[s.selected], true
}

// Cancel closes the switcher without a selection.
func (s *Switcher) Cancel() {
	s.reset()
}

func (s *Switcher) reset() {
	s.state = StateClosed
	s.all = nil
	s.filtered = nil
	s.query = ""
	s.selected = 0
}

func (s *Switcher) State() State { return s.state }
func (s *Switcher) IsOpen() bool { return s.state != StateClosed }
func (s *Switcher) Query() string { return s.query }
func (s *Switcher) SelectedIndex() int { return s.selected }

// Entries returns the filtered list.
func (s *Switcher) Entries() []Entry {
	return append([]Entry(nil), s.filtered...)
}
