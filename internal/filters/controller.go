package filters

import (
	"sync"

	"advisor/internal/catalog"
	"advisor/internal/logging"
)

// Controller owns the active filter set and tells subscribers when it
// changes so they can refetch dependent data.
type Controller struct {
	mu      sync.Mutex
	set     *Set
	catalog *catalog.Catalog
	strict  bool
	subs    map[int]func(*Set)
	nextSub int
	log     *logging.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithStrictCatalog makes Chips panic on values missing from the catalog.
func WithStrictCatalog(strict bool) ControllerOption {
	return func(c *Controller) { c.strict = strict }
}

// NewController returns a controller starting from a copy of initial.
func NewController(initial *Set, cat *catalog.Catalog, opts ...ControllerOption) *Controller {
	if initial == nil {
		initial = NewSet()
	}
	c := &Controller{
		set:     initial.Clone(),
		catalog: cat,
		subs:    make(map[int]func(*Set)),
		log:     logging.Get(logging.CategoryFilters),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Filters returns a copy of the current set.
func (c *Controller) Filters() *Set {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set.Clone()
}

// Chips returns the chip groups for the current set.
func (c *Controller) Chips() []ChipGroup {
	groups, err := Chips(c.Filters(), c.catalog)
	if err != nil {
		if c.strict {
			panic(err)
		}
		c.log.Warn("skipping chips: %v", err)
	}
	return groups
}

// SetFilter stores value under key and notifies subscribers.
func (c *Controller) SetFilter(key, value string) {
	c.mu.Lock()
	c.set.Set(key, value)
	c.mu.Unlock()
	c.publish()
}

// RemoveFilterValue removes one chip value. Subscribers are only notified
// when the set changed.
func (c *Controller) RemoveFilterValue(key, value string) {
	c.mu.Lock()
	changed := c.set.RemoveValue(key, value)
	c.mu.Unlock()
	if !changed {
		c.log.Debug("remove %s=%s: not present", key, value)
		return
	}
	c.publish()
}

// RemoveAllFilters clears every key, not only the ones shown as chips.
func (c *Controller) RemoveAllFilters() {
	c.mu.Lock()
	c.set.Clear()
	c.mu.Unlock()
	c.publish()
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (c *Controller) Subscribe(fn func(*Set)) func() {
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

func (c *Controller) publish() {
	c.mu.Lock()
	snapshot := c.set.Clone()
	fns := make([]func(*Set), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot.Clone())
	}
}
