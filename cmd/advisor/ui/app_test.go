package ui

import (
	"context"
	"strings"
	"testing"

	"advisor/internal/ack"
	"advisor/internal/types"

	tea "github.com/charmbracelet/bubbletea"
)

// mount runs the synchronizer mount and the page load it triggers.
func mount(t *testing.T, m Model) Model {
	t.Helper()
	next, cmd := m.Update(tagsMountedMsg{err: m.deps.Tags.Mount(context.Background())})
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("expected initial page load")
	}
	next, _ = m.Update(cmd())
	next, _ = next.(Model).Update(tagsChangedMsg{snap: m.deps.Tags.Snapshot()})
	return next.(Model)
}

func TestAppInitialRulesPage(t *testing.T) {
	m, _ := newTestModel(t, RulesPath)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = mount(t, next.(Model))

	view := m.View()
	for _, want := range []string{"Filter results All systems", rulesPageTitle, "Root login over SSH is permitted"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
	if got := m.deps.Store.SelectedTags(); got == nil || len(got) != 0 {
		t.Fatalf("absent tags param should initialize an empty selection, got %#v", got)
	}
}

func TestAppTabSwitchesToSystems(t *testing.T) {
	m, _ := newTestModel(t, RulesPath)
	m = mount(t, m)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.Page() != PageSystems {
		t.Fatalf("expected systems page")
	}
	if !strings.HasPrefix(m.deps.Location.String(), SystemsPath) {
		t.Fatalf("unexpected location %s", m.deps.Location.String())
	}
	next, _ = m.Update(cmd())
	m = next.(Model)

	if !strings.Contains(m.View(), "dev-01.example.com") {
		t.Fatalf("expected systems in view:\n%s", m.View())
	}
}

func TestAppTagSelectionReloadsPage(t *testing.T) {
	m, _ := newTestModel(t, SystemsPath)
	m.page = PageSystems
	m = mount(t, m)

	next, _ := m.Update(keyRunes("t"))
	m = next.(Model)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if got := m.deps.Store.SelectedTags(); len(got) != 1 || got[0] != "rhel-8" {
		t.Fatalf("unexpected selection %v", got)
	}
	if !strings.Contains(m.deps.Location.String(), "tags=rhel-8") {
		t.Fatalf("expected tags in location %s", m.deps.Location.String())
	}

	next, load := m.Update(cmd())
	m = next.(Model)
	if load == nil {
		t.Fatalf("selection change should reload the page")
	}
	next, _ = m.Update(load())
	m = next.(Model)

	view := m.View()
	if strings.Contains(view, "web-02.example.com") || !strings.Contains(view, "web-01.example.com") {
		t.Fatalf("expected rhel-8 systems only:\n%s", view)
	}
}

func TestAppURLTagsAreReconciled(t *testing.T) {
	m, _ := newTestModel(t, SystemsPath+"?tags=web,unknown&page=2")
	m.page = PageSystems
	m = mount(t, m)

	if got := m.deps.Store.SelectedTags(); len(got) != 1 || got[0] != "web" {
		t.Fatalf("unexpected selection %v", got)
	}
	if got := m.deps.Location.String(); got != SystemsPath+"?tags=web&page=2" {
		t.Fatalf("unexpected location %s", got)
	}
}

func TestAppFiltersWrittenToLocation(t *testing.T) {
	m, _ := newTestModel(t, RulesPath)
	m = mount(t, m)

	next, _ := m.Update(keyRunes("4"))
	m = next.(Model)
	next, _ = m.Update(keyRunes("3"))
	m = next.(Model)
	next, _ = m.Update(filtersChangedMsg{})
	m = next.(Model)

	if got := m.deps.Location.String(); got != RulesPath+"?total_risk=4,3" {
		t.Fatalf("unexpected location %s", got)
	}

	next, _ = m.Update(keyRunes("c"))
	m = next.(Model)
	next, _ = m.Update(filtersChangedMsg{})
	m = next.(Model)
	if got := m.deps.Location.String(); got != RulesPath {
		t.Fatalf("cleared filters should leave the query empty, got %s", got)
	}
}

func TestAppDisableModalRoutesKeys(t *testing.T) {
	m, _ := newTestModel(t, RulesPath)
	m = mount(t, m)

	rule := types.Rule{RuleID: "deprecated_ntp|NTPD_IN_USE", RuleStatus: types.RuleStatusEnabled}
	next, _ := m.Update(openDisableMsg{sub: ack.Submission{Rule: rule}})
	m = next.(Model)
	if !strings.Contains(m.View(), disableRuleTitle) {
		t.Fatalf("expected modal in view")
	}

	// Typed keys go to the justification, not the page shortcuts.
	next, _ = m.Update(keyRunes("q"))
	m = next.(Model)
	if m.modal.Justification() != "q" {
		t.Fatalf("expected modal to capture keys, got %q", m.modal.Justification())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.modal.IsOpen() {
		t.Fatalf("esc should close the modal")
	}
}

func TestAppManageTagsView(t *testing.T) {
	m, _ := newTestModel(t, RulesPath)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = mount(t, next.(Model))

	next, _ = m.Update(openManageTagsMsg{})
	m = next.(Model)
	if !strings.Contains(m.View(), "rhel-9") {
		t.Fatalf("expected tag list in manage view:\n%s", m.View())
	}

	next, _ = m.Update(closeManageTagsMsg{})
	m = next.(Model)
	if strings.Contains(m.View(), "[space] toggle") {
		t.Fatalf("manage view should be closed")
	}
}

func TestAppClosingRuleReturnsToPreviousLocation(t *testing.T) {
	m, _ := newTestModel(t, RulesPath+"?sort=-publish_date")
	m = mount(t, m)

	next, _ := m.Update(openRuleMsg{ruleID: bondRule})
	m = next.(Model)
	if m.Page() != PageRule {
		t.Fatalf("expected rule page, got %v", m.Page())
	}
	if !strings.HasPrefix(m.deps.Location.String(), RulesPath+"/network_bond_opts_config_issue") {
		t.Fatalf("unexpected location %s", m.deps.Location.String())
	}

	next, cmd := m.Update(closeRuleMsg{})
	m = next.(Model)
	if m.Page() != PageRules {
		t.Fatalf("expected rules page, got %v", m.Page())
	}
	if cmd == nil {
		t.Fatalf("expected rules reload")
	}
	if got := m.deps.Location.String(); got != RulesPath+"?sort=-publish_date" {
		t.Fatalf("expected previous location, got %s", got)
	}
}
