package store

import "advisor/internal/types"

// Action is a discrete state update.
type Action interface {
	apply(*State)
}

// SetSelectedTags replaces the tag selection. A nil Tags is stored as an
// empty, initialized selection.
type SetSelectedTags struct {
	Tags []string
}

func (a SetSelectedTags) apply(s *State) {
	s.SelectedTags = dedupe(a.Tags)
}

func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// SetRule stores or replaces one rule record.
type SetRule struct {
	Rule types.Rule
}

func (a SetRule) apply(s *State) {
	s.Rules[a.Rule.RuleID] = a.Rule
}

// SetRules stores a batch of rule records.
type SetRules struct {
	Rules []types.Rule
}

func (a SetRules) apply(s *State) {
	for _, r := range a.Rules {
		s.Rules[r.RuleID] = r
	}
}

// SetSystems replaces the listed systems, keeping the given order.
type SetSystems struct {
	Systems []types.System
}

func (a SetSystems) apply(s *State) {
	s.Systems = make(map[string]types.System, len(a.Systems))
	s.SystemOrder = make([]string, 0, len(a.Systems))
	for _, sys := range a.Systems {
		if _, dup := s.Systems[sys.ID]; !dup {
			s.SystemOrder = append(s.SystemOrder, sys.ID)
		}
		s.Systems[sys.ID] = sys
	}
}

// RemoveSystems drops acknowledged hosts from the listed systems.
type RemoveSystems struct {
	HostIDs []string
}

func (a RemoveSystems) apply(s *State) {
	drop := make(map[string]bool, len(a.HostIDs))
	for _, id := range a.HostIDs {
		drop[id] = true
		delete(s.Systems, id)
	}
	kept := s.SystemOrder[:0]
	for _, id := range s.SystemOrder {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	s.SystemOrder = kept
}
