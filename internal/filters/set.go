// Package filters holds the active filter set of the rules list and reduces
// it to removable chips grouped by catalog category.
package filters

import (
	"fmt"
	"net/url"
	"strings"

	"advisor/internal/types"
)

// Reserved keys are filters that never render as chips.
var Reserved = map[string]bool{
	"text":          true,
	"impacting":     true,
	"reports_shown": true,
	"topic":         true,
}

// IsReserved reports whether key is excluded from chip display.
func IsReserved(key string) bool {
	return Reserved[key]
}

// Set is an insertion-ordered mapping from filter key to a scalar or
// comma-joined list of scalars. The zero value is empty and ready to use.
type Set struct {
	keys   []string
	values map[string]string
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{values: make(map[string]string)}
}

// ParseQuery reads a raw query string, keeping key order. Repeated keys are
// merged into one comma-joined value; empty values are ignored.
func ParseQuery(raw string) (*Set, error) {
	s := NewSet()
	raw = strings.TrimPrefix(raw, "?")
	if raw == "" {
		return s, nil
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("invalid filter key %q: %w", k, err)
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %q: %w", key, err)
		}
		if key == "" || val == "" {
			continue
		}
		if prev, ok := s.Get(key); ok {
			val = prev + "," + val
		}
		s.Set(key, val)
	}
	return s, nil
}

func (s *Set) init() {
	if s.values == nil {
		s.values = make(map[string]string)
	}
}

// Get returns the raw value of key.
func (s *Set) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key. Existing keys keep their position; an empty
// value deletes the key.
func (s *Set) Set(key, value string) {
	if value == "" {
		s.Delete(key)
		return
	}
	s.init()
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Delete removes key.
func (s *Set) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Clear removes every key, including reserved ones.
func (s *Set) Clear() {
	s.keys = nil
	s.values = make(map[string]string)
}

// Keys returns the keys in insertion order.
func (s *Set) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Len returns the number of keys.
func (s *Set) Len() int {
	return len(s.keys)
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	c := NewSet()
	for _, k := range s.keys {
		c.Set(k, s.values[k])
	}
	return c
}

// RemoveValue drops one value from key. When it was the last value the key
// is deleted; otherwise the remaining values keep their order. Reports
// whether anything changed.
func (s *Set) RemoveValue(key, value string) bool {
	raw, ok := s.Get(key)
	if !ok {
		return false
	}
	vals := types.SplitList(raw)
	kept := make([]string, 0, len(vals))
	removed := false
	for _, v := range vals {
		if !removed && v == value {
			removed = true
			continue
		}
		kept = append(kept, v)
	}
	if !removed {
		return false
	}
	if len(kept) == 0 {
		s.Delete(key)
	} else {
		s.values[key] = strings.Join(kept, ",")
	}
	return true
}

// Encode renders the set as a query string in key order. Commas between
// list items are left unescaped.
func (s *Set) Encode() string {
	parts := make([]string, 0, len(s.keys))
	for _, k := range s.keys {
		vals := types.SplitList(s.values[k])
		for i, v := range vals {
			vals[i] = url.QueryEscape(v)
		}
		parts = append(parts, url.QueryEscape(k)+"="+strings.Join(vals, ","))
	}
	return strings.Join(parts, "&")
}

// Values converts the set for use in request URLs.
func (s *Set) Values() url.Values {
	out := make(url.Values, len(s.keys))
	for _, k := range s.keys {
		out.Set(k, s.values[k])
	}
	return out
}
