package tags

import (
	"sync"
	"time"
)

// DefaultDebounceDelay is the quiescence interval before search text is applied.
const DefaultDebounceDelay = 800 * time.Millisecond

// Debouncer runs the last scheduled function once no new call has arrived
// for the configured delay. Trailing edge only.
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
}

// NewDebouncer creates a debouncer with the given delay.
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{duration: duration}
}

// Debounce schedules fn, replacing any pending call.
func (d *Debouncer) Debounce(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// TextDebouncer debounces a string value: the handler sees only the last
// value set during a burst.
type TextDebouncer struct {
	debouncer *Debouncer
	mu        sync.Mutex
	pending   string
}

// NewTextDebouncer creates a text debouncer with the given delay.
func NewTextDebouncer(duration time.Duration) *TextDebouncer {
	return &TextDebouncer{debouncer: NewDebouncer(duration)}
}

// Set records text and schedules handler with the settled value.
func (td *TextDebouncer) Set(text string, handler func(string)) {
	td.mu.Lock()
	td.pending = text
	td.mu.Unlock()

	td.debouncer.Debounce(func() {
		td.mu.Lock()
		v := td.pending
		td.mu.Unlock()

		handler(v)
	})
}

// Cancel drops the pending value.
func (td *TextDebouncer) Cancel() {
	td.debouncer.Cancel()
}
