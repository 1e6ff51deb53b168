// Package tags keeps the tag selection, the `tags` URL parameter and the
// searchable backend tag list consistent.
//
// Three triggers drive it: Mount, a debounced search text change, and
// navigation. Every fetch is numbered; a response is applied only if no
// later fetch was started in the meantime.
package tags

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"advisor/internal/location"
	"advisor/internal/logging"
	"advisor/internal/notify"
	"advisor/internal/store"
)

// DefaultShowMoreCount is how many tags the selector lists inline.
const DefaultShowMoreCount = 20

// TagLister fetches the full tag list from the backend.
type TagLister interface {
	ListTags(ctx context.Context) ([]string, error)
}

// Options wires a Synchronizer to its collaborators.
type Options struct {
	DebounceDelay time.Duration
	ShowMoreCount int
	Location      *location.Location
	Store         *store.Store
	Client        TagLister
	Notifier      notify.Dispatcher
	Logger        *logging.Logger
}

// Snapshot is the observable synchronizer state.
type Snapshot struct {
	// Tags is the backend list after the search filter, as served (encoded).
	Tags                []string
	Selected            []string
	SearchText          string
	DebouncedSearchText string
	Open                bool
	Loading             bool
	Loaded              bool
}

// NoTags reports whether the backend has no tags at all. An empty result
// of a search does not count.
func (s Snapshot) NoTags() bool {
	return s.Loaded && len(s.Tags) == 0 && s.DebouncedSearchText == ""
}

// Synchronizer is the tag toolbar controller.
type Synchronizer struct {
	opts      Options
	debouncer *TextDebouncer
	log       *logging.Logger

	// selMu serializes read-modify-write cycles of the selection across
	// the URL and the store.
	selMu sync.Mutex

	mu         sync.Mutex
	state      Snapshot
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
	unsubLoc   func()
	subs       map[int]func(Snapshot)
	nextSub    int
	closed     bool
}

// New returns a synchronizer. Location, Store and Client are required.
func New(opts Options) (*Synchronizer, error) {
	if opts.Location == nil || opts.Store == nil || opts.Client == nil {
		return nil, fmt.Errorf("tags: location, store and client are required")
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = DefaultDebounceDelay
	}
	if opts.ShowMoreCount <= 0 {
		opts.ShowMoreCount = DefaultShowMoreCount
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Logger == nil {
		opts.Logger = logging.Get(logging.CategoryTags)
	}
	return &Synchronizer{
		opts:      opts,
		debouncer: NewTextDebouncer(opts.DebounceDelay),
		log:       opts.Logger,
		subs:      make(map[int]func(Snapshot)),
	}, nil
}

// Mount initializes the selection from the URL and performs the first fetch.
// It blocks until that fetch completes and returns its error, if any; the
// error has already been reported through the notifier.
func (s *Synchronizer) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return fmt.Errorf("tags: already mounted")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	// An absent parameter initializes an uninitialized selection without
	// looking at the tag list at all.
	s.selMu.Lock()
	if _, ok := s.opts.Location.Tags(); !ok && s.opts.Store.SelectedTags() == nil {
		s.opts.Store.Dispatch(store.SetSelectedTags{Tags: []string{}})
	}
	s.selMu.Unlock()

	unsub := s.opts.Location.Subscribe(func(string) { s.syncURL() })
	s.mu.Lock()
	s.unsubLoc = unsub
	s.mu.Unlock()

	return s.Refresh(s.context())
}

// Close stops pending debounces and in-flight fetches. The store is left
// untouched.
func (s *Synchronizer) Close() {
	s.debouncer.Cancel()

	s.mu.Lock()
	s.closed = true
	cancel, unsub := s.cancel, s.unsubLoc
	s.unsubLoc = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsub != nil {
		unsub()
	}
}

func (s *Synchronizer) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// Refresh fetches the tag list and applies it unless a newer fetch started
// before it returned.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	filter := s.state.DebouncedSearchText
	s.state.Loading = true
	s.mu.Unlock()
	s.publish()

	all, err := s.opts.Client.ListTags(ctx)

	s.mu.Lock()
	if gen != s.generation || s.closed {
		s.mu.Unlock()
		s.log.Debug("dropping stale tag response (generation %d)", gen)
		return nil
	}
	s.state.Loading = false
	if err != nil {
		s.mu.Unlock()
		s.log.Warn("tag fetch failed: %v", err)
		notify.Failure(s.opts.Notifier, err)
		s.publish()
		return err
	}
	s.state.Tags = FilterTags(all, filter)
	s.state.Loaded = true
	s.mu.Unlock()

	s.reconcile(all)
	s.publish()
	return nil
}

// reconcile intersects a non-empty URL selection with the backend list and
// writes the result back to both the URL and the store.
func (s *Synchronizer) reconcile(all []string) {
	s.selMu.Lock()
	defer s.selMu.Unlock()

	raw, ok := s.opts.Location.Tags()
	if !ok || raw == "" {
		return
	}
	selected := Intersect(strings.Split(raw, ","), all)
	s.opts.Location.SetTags(selected)
	s.opts.Store.Dispatch(store.SetSelectedTags{Tags: selected})
	s.log.Debug("selection from URL: %v", selected)
}

// SetSearchText records keystrokes. The debounced value follows after the
// configured delay of quiescence and triggers a refetch when it changed.
func (s *Synchronizer) SetSearchText(text string) {
	s.mu.Lock()
	s.state.SearchText = text
	s.mu.Unlock()
	s.publish()

	s.debouncer.Set(text, s.applySearch)
}

func (s *Synchronizer) applySearch(text string) {
	s.mu.Lock()
	if s.closed || s.state.DebouncedSearchText == text {
		s.mu.Unlock()
		return
	}
	s.state.DebouncedSearchText = text
	s.mu.Unlock()

	_ = s.Refresh(s.context())
}

// SetOpen opens or closes the selector. Both directions clear the search
// text; the selection is kept.
func (s *Synchronizer) SetOpen(open bool) {
	s.mu.Lock()
	s.state.Open = open
	s.mu.Unlock()
	s.SetSearchText("")
}

// Toggle removes tag from the selection when present, appends it otherwise,
// and rewrites the URL.
func (s *Synchronizer) Toggle(tag string) []string {
	s.selMu.Lock()
	current := s.opts.Store.SelectedTags()
	next := make([]string, 0, len(current)+1)
	found := false
	for _, t := range current {
		if t == tag {
			found = true
			continue
		}
		next = append(next, t)
	}
	if !found {
		next = append(next, tag)
	}

	s.opts.Store.Dispatch(store.SetSelectedTags{Tags: next})
	s.opts.Location.SetTags(next)
	s.selMu.Unlock()

	s.publish()
	return next
}

// Navigate moves to raw; the new URL's tags parameter is then rewritten
// from the store.
func (s *Synchronizer) Navigate(raw string) error {
	if err := s.opts.Location.Navigate(raw); err != nil {
		return err
	}
	s.mu.Lock()
	subscribed := s.unsubLoc != nil
	s.mu.Unlock()
	if !subscribed {
		s.syncURL()
	}
	return nil
}

// Back returns to the previous location and rewrites its tags parameter
// from the store. It reports false when there is no history.
func (s *Synchronizer) Back() bool {
	if !s.opts.Location.Back() {
		return false
	}
	s.mu.Lock()
	subscribed := s.unsubLoc != nil
	s.mu.Unlock()
	if !subscribed {
		s.syncURL()
	}
	return true
}

func (s *Synchronizer) syncURL() {
	s.selMu.Lock()
	defer s.selMu.Unlock()

	selected := s.opts.Store.SelectedTags()
	if selected == nil {
		return
	}
	s.opts.Location.SetTags(selected)
}

// Visible returns the tags listed inline and how many more exist.
func (s *Synchronizer) Visible() ([]string, int) {
	snap := s.Snapshot()
	n := s.opts.ShowMoreCount
	if len(snap.Tags) <= n {
		return snap.Tags, 0
	}
	return snap.Tags[:n], len(snap.Tags) - n
}

// Snapshot returns the current state.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	snap := s.state
	snap.Tags = append([]string(nil), s.state.Tags...)
	s.mu.Unlock()
	snap.Selected = s.opts.Store.SelectedTags()
	return snap
}

// Subscribe registers fn for state changes and returns a function that
// removes it.
func (s *Synchronizer) Subscribe(fn func(Snapshot)) func() {
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

func (s *Synchronizer) publish() {
	s.mu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	if len(fns) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}

// Intersect returns the items of wanted that appear in known, in wanted
// order, without duplicates.
func Intersect(wanted, known []string) []string {
	set := make(map[string]bool, len(known))
	for _, k := range known {
		set[k] = true
	}
	out := make([]string, 0, len(wanted))
	seen := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		if set[w] && !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// FilterTags keeps the tags containing filter, ignoring case. Both the served
// and the decoded form of a tag are matched.
func FilterTags(all []string, filter string) []string {
	if filter == "" {
		return append([]string(nil), all...)
	}
	needle := strings.ToLower(filter)
	out := make([]string, 0, len(all))
	for _, t := range all {
		if strings.Contains(strings.ToLower(t), needle) ||
			strings.Contains(strings.ToLower(DisplayTag(t)), needle) {
			out = append(out, t)
		}
	}
	return out
}

// DisplayTag decodes a served tag for display.
func DisplayTag(tag string) string {
	decoded, err := url.PathUnescape(tag)
	if err != nil {
		return tag
	}
	return decoded
}
