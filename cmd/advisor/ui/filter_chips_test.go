package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestFilterChipsView(t *testing.T) {
	ctrl := newTestController(t, "total_risk=4,3&text=ssh&category=2")
	m := NewFilterChipsModel(ctrl, DefaultStyles())

	view := m.View()
	for _, want := range []string{"Total risk:", "Critical", "Important", "Category:", "Security", "Clear filters"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in chip view", want)
		}
	}
	if strings.Contains(view, "ssh") {
		t.Fatalf("reserved text filter must not render as a chip")
	}
}

func TestFilterChipsRemoveFocusedChip(t *testing.T) {
	ctrl := newTestController(t, "total_risk=4,3")
	m := NewFilterChipsModel(ctrl, DefaultStyles())

	if !m.Focus() {
		t.Fatalf("expected chips to take focus")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if got, _ := ctrl.Filters().Get("total_risk"); got != "3" {
		t.Fatalf("expected remaining total_risk=3, got %q", got)
	}
	if !m.Focused() {
		t.Fatalf("chips should stay focused while chips remain")
	}
}

func TestFilterChipsClearFilters(t *testing.T) {
	ctrl := newTestController(t, "total_risk=4&text=ssh")
	m := NewFilterChipsModel(ctrl, DefaultStyles())

	m.Focus()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if ctrl.Filters().Len() != 0 {
		t.Fatalf("clear filters must remove every key, left %v", ctrl.Filters().Keys())
	}
	if m.Focused() || m.View() != "" {
		t.Fatalf("empty chip row should blur and render nothing")
	}
}
