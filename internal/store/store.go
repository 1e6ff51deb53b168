// Package store is the shared application state: the selected tags, the rule
// records and the systems listed for the current view. State is read through
// snapshots and changed only through dispatched actions.
package store

import (
	"sync"

	"advisor/internal/logging"
	"advisor/internal/types"
)

// State is the store content. SelectedTags is nil until the tag toolbar has
// initialized it.
type State struct {
	SelectedTags []string
	Rules        map[string]types.Rule
	Systems      map[string]types.System
	SystemOrder  []string
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := State{
		Rules:       make(map[string]types.Rule, len(s.Rules)),
		Systems:     make(map[string]types.System, len(s.Systems)),
		SystemOrder: append([]string(nil), s.SystemOrder...),
	}
	if s.SelectedTags != nil {
		out.SelectedTags = append([]string{}, s.SelectedTags...)
	}
	for k, v := range s.Rules {
		out.Rules[k] = v
	}
	for k, v := range s.Systems {
		out.Systems[k] = v
	}
	return out
}

// OrderedSystems returns the systems in listing order.
func (s State) OrderedSystems() []types.System {
	out := make([]types.System, 0, len(s.SystemOrder))
	for _, id := range s.SystemOrder {
		if sys, ok := s.Systems[id]; ok {
			out = append(out, sys)
		}
	}
	return out
}

// Store is a process-scoped state container. Unmounting a view never
// resets it.
type Store struct {
	mu      sync.RWMutex
	state   State
	subs    map[int]func(State)
	nextSub int
	log     *logging.Logger
}

// New returns an empty store.
func New() *Store {
	return &Store{
		state: State{
			Rules:   make(map[string]types.Rule),
			Systems: make(map[string]types.System),
		},
		subs: make(map[int]func(State)),
		log:  logging.Get(logging.CategoryStore),
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// SelectedTags returns the selected tags; nil means not yet initialized.
func (s *Store) SelectedTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.SelectedTags == nil {
		return nil
	}
	return append([]string{}, s.state.SelectedTags...)
}

// Rule returns the record for id.
func (s *Store) Rule(id string) (types.Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.Rules[id]
	return r, ok
}

// Dispatch applies a to the state atomically, then notifies subscribers
// with the resulting snapshot.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	a.apply(&s.state)
	snapshot := s.state.Clone()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	s.log.Debug("dispatch %T", a)
	for _, fn := range fns {
		fn(snapshot)
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
