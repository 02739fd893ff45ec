package workspace

import "time"

// DefaultLoaderDelay is how long an operation must run before the loader shows.
const DefaultLoaderDelay = 300 * time.Millisecond

// LoaderOptions configures one Show call.
type LoaderOptions struct {
	// Delay overrides the loader's default debounce when non-zero.
	Delay time.Duration
	// Cancel, when set, makes the loader cancellable.
	Cancel func()
}

// Loader is a debounced busy indicator.
//
// Show arms the loader and returns a generation plus the delay to wait.
// The caller schedules Reveal(gen) after that delay; a Hide or a newer
// Show in the meantime makes the stale Reveal a no-op.
type Loader struct {
	delay   time.Duration
	gen     uint64
	armed   bool
	visible bool
	message string
	cancel  func()
}

// NewLoader returns a loader with the given default delay.
func NewLoader(delay time.Duration) *Loader {
	if delay <= 0 {
		delay = DefaultLoaderDelay
	}
	return &Loader{delay: delay}
}

// Show arms the loader with a message.
func (l *Loader) Show(message string, opts LoaderOptions) (uint64, time.Duration) {
	l.gen++
	l.armed = true
	l.visible = false
	l.message = message
	l.cancel = opts.Cancel
	delay := l.delay
	if opts.Delay > 0 {
		delay = opts.Delay
	}
	return l.gen, delay
}

// Reveal makes the loader visible if gen is still current.
func (l *Loader) Reveal(gen uint64) bool {
	if !l.armed || gen != l.gen {
		return false
	}
	l.visible = true
	return true
}

// Hide disarms the loader.
func (l *Loader) Hide() {
	l.gen++
	l.armed = false
	l.visible = false
	l.message = ""
	l.cancel = nil
}

// HideIf hides the loader only if gen is still the current generation, so a
// finished operation cannot hide a loader a newer one armed.
func (l *Loader) HideIf(gen uint64) bool {
	if !l.armed || gen != l.gen {
		return false
	}
	l.Hide()
	return true
}

// Cancel runs the cancel callback of a cancellable loader and hides it.
// It reports whether anything was cancelled.
func (l *Loader) Cancel() bool {
	if !l.armed || l.cancel == nil {
		return false
	}
	cancel := l.cancel
	l.Hide()
	cancel()
	return true
}

func (l *Loader) Visible() bool { return l.visible }
func (l *Loader) Active() bool { return l.armed }
func (l *Loader) Cancellable() bool { return l.armed && l.cancel != nil }
func (l *Loader) Message() string { return l.message }

// SetDelay changes the default debounce.
func (l *Loader) SetDelay(d time.Duration) {
	if d > 0 {
		l.delay = d
	}
}
