package ui

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"advisor/internal/ack"
	"advisor/internal/api"
	"advisor/internal/catalog"
	"advisor/internal/filters"
	"advisor/internal/location"
	"advisor/internal/mockapi"
	"advisor/internal/notify"
	"advisor/internal/store"
	"advisor/internal/tags"

	tea "github.com/charmbracelet/bubbletea"
)

type staticLister []string

func (l staticLister) ListTags(context.Context) ([]string, error) {
	return append([]string(nil), l...), nil
}

func newTestBackend(t *testing.T) (*api.Client, *mockapi.Server) {
	t.Helper()
	srv := mockapi.New(mockapi.Default(), "/api", nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	c, err := api.NewClient(ts.URL + "/api")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, srv
}

func newTestSync(t *testing.T, lister tags.TagLister, st *store.Store, loc *location.Location) *tags.Synchronizer {
	t.Helper()
	s, err := tags.New(tags.Options{
		DebounceDelay: time.Millisecond,
		Location:      loc,
		Store:         st,
		Client:        lister,
		Notifier:      notify.Discard,
	})
	if err != nil {
		t.Fatalf("tags.New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func newTestLocation(t *testing.T, raw string) *location.Location {
	t.Helper()
	loc, err := location.New(raw)
	if err != nil {
		t.Fatalf("location.New: %v", err)
	}
	return loc
}

func newTestController(t *testing.T, query string) *filters.Controller {
	t.Helper()
	set, err := filters.ParseQuery(query)
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	return filters.NewController(set, catalog.Default())
}

// newTestModel wires an app against the in-memory backend.
func newTestModel(t *testing.T, raw string) (Model, *mockapi.Server) {
	t.Helper()
	client, srv := newTestBackend(t)
	st := store.New()
	loc := newTestLocation(t, raw)
	center := notify.NewCenter(5)
	sync := newTestSync(t, client, st, loc)
	orch, err := ack.New(ack.Options{Client: client, Store: st, Notifier: center})
	if err != nil {
		t.Fatalf("ack.New: %v", err)
	}
	m := NewModel(Deps{
		Backend:  client,
		Store:    st,
		Location: loc,
		Tags:     sync,
		Filters:  newTestController(t, ""),
		Acks:     orch,
		Toasts:   center,
		Styles:   DefaultStyles(),
	})
	t.Cleanup(m.Close)
	return m, srv
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
