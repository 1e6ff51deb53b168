// Package location models the browser location of the dashboard: the current
// URL, its query parameters and a navigation history.
package location

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// TagsParam is the query parameter holding the comma-joined tag selection.
const TagsParam = "tags"

// Location is the current URL plus history. Param writes replace the
// current history entry; Navigate pushes a new one.
type Location struct {
	mu      sync.Mutex
	current *url.URL
	// emptyTags is set when the current entry was entered with a present but
	// empty tags parameter; an empty selection then writes it back as such.
	emptyTags bool
	history   []string
	subs      map[int]func(string)
	nextSub   int
}

// New parses raw as the initial location.
func New(raw string) (*Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", raw, err)
	}
	return &Location{current: u, emptyTags: hasEmptyTags(u), subs: make(map[int]func(string))}, nil
}

// String returns the current URL.
func (l *Location) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current.String()
}

// RawQuery returns the current query string without the leading '?'.
func (l *Location) RawQuery() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current.RawQuery
}

// Param returns the decoded value of name and whether it is present.
func (l *Location) Param(name string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, pair := range splitQuery(l.current.RawQuery) {
		k, v, _ := strings.Cut(pair, "=")
		if key, err := url.QueryUnescape(k); err == nil && key == name {
			val, err := url.QueryUnescape(v)
			if err != nil {
				return v, true
			}
			return val, true
		}
	}
	return "", false
}

// ReplaceParam sets name to an already encoded value in place, appending it
// when absent. An empty value removes the parameter.
func (l *Location) ReplaceParam(name, encoded string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.replaceParam(name, encoded, false)
}

// replaceParam requires l.mu. With keepEmpty an empty value is written as
// "name=" instead of removing the parameter.
func (l *Location) replaceParam(name, encoded string, keepEmpty bool) {
	write := encoded != "" || keepEmpty
	replacement := url.QueryEscape(name) + "=" + encoded
	pairs := splitQuery(l.current.RawQuery)
	kept := make([]string, 0, len(pairs)+1)
	placed := false
	for _, pair := range pairs {
		k, _, _ := strings.Cut(pair, "=")
		if key, err := url.QueryUnescape(k); err == nil && key == name {
			if write && !placed {
				kept = append(kept, replacement)
				placed = true
			}
			continue
		}
		kept = append(kept, pair)
	}
	if write && !placed {
		kept = append(kept, replacement)
	}
	l.current.RawQuery = strings.Join(kept, "&")
}

// Tags returns the raw tags parameter; ok is false when it is absent.
func (l *Location) Tags() (string, bool) {
	return l.Param(TagsParam)
}

// SetTags rewrites the tags parameter from a selection. An empty selection
// removes the parameter, unless the location was entered with "tags=", which
// is then restored.
func (l *Location) SetTags(tags []string) {
	escaped := make([]string, len(tags))
	for i, t := range tags {
		escaped[i] = url.QueryEscape(t)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.replaceParam(TagsParam, strings.Join(escaped, ","), l.emptyTags)
}

// Navigate moves to raw, pushing the current URL onto the history, and
// notifies subscribers.
func (l *Location) Navigate(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid location %q: %w", raw, err)
	}
	l.mu.Lock()
	l.history = append(l.history, l.current.String())
	l.current = u
	l.emptyTags = hasEmptyTags(u)
	l.mu.Unlock()
	l.publish()
	return nil
}

// Back returns to the previous history entry.
func (l *Location) Back() bool {
	l.mu.Lock()
	if len(l.history) == 0 {
		l.mu.Unlock()
		return false
	}
	prev := l.history[len(l.history)-1]
	l.history = l.history[:len(l.history)-1]
	u, err := url.Parse(prev)
	if err != nil {
		l.mu.Unlock()
		return false
	}
	l.current = u
	l.emptyTags = hasEmptyTags(u)
	l.mu.Unlock()
	l.publish()
	return true
}

// Subscribe registers fn for navigation events and returns a function that
// removes it. Param replacements do not notify.
func (l *Location) Subscribe(fn func(string)) func() {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

func (l *Location) publish() {
	l.mu.Lock()
	cur := l.current.String()
	fns := make([]func(string), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(cur)
	}
}

func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "&")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hasEmptyTags(u *url.URL) bool {
	for _, pair := range splitQuery(u.RawQuery) {
		k, v, _ := strings.Cut(pair, "=")
		if key, err := url.QueryUnescape(k); err == nil && key == TagsParam {
			return v == ""
		}
	}
	return false
}
