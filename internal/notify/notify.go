// Package notify is the single boundary through which user-visible
// notifications (toasts) are raised.
package notify

import (
	"sync"
	"time"

	"advisor/internal/logging"

	"github.com/google/uuid"
)

// Variant selects the toast style.
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantDanger  Variant = "danger"
	VariantWarning Variant = "warning"
	VariantInfo    Variant = "info"
)

// ErrorTitle is the title of every network failure notification.
const ErrorTitle = "Error"

// Notification is one toast.
type Notification struct {
	ID          string
	Variant     Variant
	Title       string
	Description string
	Dismissable bool
	// Timeout marks toasts that expire on their own.
	Timeout   bool
	CreatedAt time.Time
}

// Dispatcher accepts notifications.
type Dispatcher interface {
	Notify(Notification)
}

// Func adapts a function to Dispatcher.
type Func func(Notification)

// Notify calls f.
func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Dispatcher = Func(func(Notification) {})

// Failure raises the danger toast for a failed request.
func Failure(d Dispatcher, err error) {
	if err == nil {
		return
	}
	d.Notify(Notification{
		Variant:     VariantDanger,
		Title:       ErrorTitle,
		Description: err.Error(),
		Dismissable: true,
	})
}

// Success raises a self-expiring success toast.
func Success(d Dispatcher, title string) {
	d.Notify(Notification{
		Variant:     VariantSuccess,
		Title:       title,
		Dismissable: true,
		Timeout:     true,
	})
}

// Center keeps the active toasts and fans them out to subscribers.
type Center struct {
	mu      sync.Mutex
	active  []Notification
	limit   int
	subs    map[int]func(Notification)
	nextSub int
	now     func() time.Time
	log     *logging.Logger
}

// NewCenter returns a center holding at most limit toasts (oldest dropped).
func NewCenter(limit int) *Center {
	if limit <= 0 {
		limit = 5
	}
	return &Center{
		limit: limit,
		subs:  make(map[int]func(Notification)),
		now:   time.Now,
		log:   logging.Get(logging.CategoryUI),
	}
}

// Notify records n, assigning an ID and timestamp when missing.
func (c *Center) Notify(n Notification) {
	c.mu.Lock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = c.now()
	}
	c.active = append(c.active, n)
	if len(c.active) > c.limit {
		c.active = c.active[len(c.active)-c.limit:]
	}
	fns := make([]func(Notification), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	c.log.Info("notification %s: %s %s", n.Variant, n.Title, n.Description)
	for _, fn := range fns {
		fn(n)
	}
}

// Active returns the current toasts, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.active...)
}

// Dismiss removes the toast with id.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.active {
		if n.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			return true
		}
	}
	return false
}

// Expire drops self-expiring toasts older than ttl and returns how many
// were removed.
func (c *Center) Expire(ttl time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := c.now().Add(-ttl)
	kept := c.active[:0]
	removed := 0
	for _, n := range c.active {
		if n.Timeout && n.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	c.active = kept
	return removed
}

// Subscribe registers fn and returns a function that removes it.
func (c *Center) Subscribe(fn func(Notification)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}
