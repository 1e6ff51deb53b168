package ui

import (
	"strings"
	"testing"

	"advisor/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func TestRulesQueryAddsSelectedTags(t *testing.T) {
	ctrl := newTestController(t, "total_risk=4,3&text=ssh")
	q := RulesQuery(ctrl.Filters(), []string{"web", "env%3Dprod"})

	if got := q.Get("total_risk"); got != "4,3" {
		t.Fatalf("unexpected total_risk %q", got)
	}
	if got := q.Get("tags"); got != "web,env%3Dprod" {
		t.Fatalf("unexpected tags %q", got)
	}
	if q.Get("text") != "ssh" {
		t.Fatalf("expected text filter to be forwarded")
	}
	if _, ok := RulesQuery(ctrl.Filters(), nil)["tags"]; ok {
		t.Fatalf("no selection must not send tags")
	}
}

func TestRulesPageLoadsRules(t *testing.T) {
	client, _ := newTestBackend(t)
	st := store.New()
	ctrl := newTestController(t, "total_risk=4")
	m := NewRulesPageModel(client, st, ctrl, DefaultStyles())

	msg := m.Load()()
	m, _ = m.Update(msg)

	view := m.View()
	if !strings.Contains(view, "Root login over SSH is permitted") {
		t.Fatalf("expected critical rule in view:\n%s", view)
	}
	if strings.Contains(view, "vm.swappiness") {
		t.Fatalf("moderate rule should be filtered out")
	}
	if !strings.Contains(view, "1 recommendations") {
		t.Fatalf("expected count in footer")
	}
	if _, ok := st.Rule("hardening_ssh_root_login|SSH_ROOT_LOGIN_ENABLED"); !ok {
		t.Fatalf("loaded rules should be dispatched to the store")
	}
}

func TestRulesPageQuickFilters(t *testing.T) {
	client, _ := newTestBackend(t)
	ctrl := newTestController(t, "")
	m := NewRulesPageModel(client, store.New(), ctrl, DefaultStyles())

	m, _ = m.Update(keyRunes("4"))
	m, _ = m.Update(keyRunes("3"))
	if got, _ := ctrl.Filters().Get("total_risk"); got != "4,3" {
		t.Fatalf("unexpected total_risk %q", got)
	}
	m, _ = m.Update(keyRunes("4"))
	if got, _ := ctrl.Filters().Get("total_risk"); got != "3" {
		t.Fatalf("toggling again should remove the value, got %q", got)
	}

	m, _ = m.Update(keyRunes("s"))
	m, _ = m.Update(keyRunes("s"))
	if got, _ := ctrl.Filters().Get("rule_status"); got != "disabled" {
		t.Fatalf("unexpected rule_status %q", got)
	}

	m, _ = m.Update(keyRunes("c"))
	if ctrl.Filters().Len() != 0 {
		t.Fatalf("c should clear every filter")
	}
}

func TestRulesPageSearchSetsTextFilter(t *testing.T) {
	client, _ := newTestBackend(t)
	ctrl := newTestController(t, "")
	m := NewRulesPageModel(client, store.New(), ctrl, DefaultStyles())

	m, _ = m.Update(keyRunes("/"))
	if !m.InputFocused() {
		t.Fatalf("expected search focus")
	}
	m, _ = m.Update(keyRunes("ntp"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if got, _ := ctrl.Filters().Get("text"); got != "ntp" {
		t.Fatalf("unexpected text filter %q", got)
	}
	if m.InputFocused() {
		t.Fatalf("enter should leave the search field")
	}
}

func TestRulesPageEnterOpensRule(t *testing.T) {
	client, _ := newTestBackend(t)
	ctrl := newTestController(t, "total_risk=4")
	m := NewRulesPageModel(client, store.New(), ctrl, DefaultStyles())
	m, _ = m.Update(m.Load()())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected open command")
	}
	open, ok := cmd().(openRuleMsg)
	if !ok || open.ruleID != "hardening_ssh_root_login|SSH_ROOT_LOGIN_ENABLED" {
		t.Fatalf("unexpected message %#v", open)
	}

	_, cmd = m.Update(keyRunes("d"))
	disable, ok := cmd().(openDisableMsg)
	if !ok || disable.sub.Rule.RuleID != open.ruleID || disable.sub.Host != nil {
		t.Fatalf("expected rule-wide disable, got %#v", disable)
	}
}
