package ui

import (
	"strings"
	"testing"

	"advisor/internal/mockapi"
	"advisor/internal/notify"
	"advisor/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

const bondRule = "network_bond_opts_config_issue|NETWORK_BONDING_OPTS_DOUBLE_QUOTES_ISSUE"

func openDetail(t *testing.T, st *store.Store, center *notify.Center) RuleDetailModel {
	t.Helper()
	client, _ := newTestBackend(t)
	m := NewRuleDetailModel(client, st, center, DefaultStyles())
	m, cmd := m.Open(bondRule)
	m, _ = m.Update(cmd())
	return m
}

func TestRuleDetailLoadsAffectedSystems(t *testing.T) {
	st := store.New()
	m := openDetail(t, st, notify.NewCenter(5))

	view := m.View()
	for _, want := range []string{"Bonding will not fail over", "web-01.example.com", "db-01.example.com"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
	if strings.Contains(view, "dev-01.example.com") {
		t.Fatalf("unaffected system listed")
	}
	if _, ok := st.Rule(bondRule); !ok {
		t.Fatalf("rule should be in the store")
	}
}

func TestRuleDetailMarkedHostsGoBulk(t *testing.T) {
	m := openDetail(t, store.New(), notify.NewCenter(5))

	m, _ = m.Update(keyRunes("a"))
	_, cmd := m.Update(keyRunes("d"))
	msg, ok := cmd().(openDisableMsg)
	if !ok {
		t.Fatalf("expected openDisableMsg")
	}
	if len(msg.sub.Hosts) != 2 || msg.sub.Host != nil {
		t.Fatalf("expected both hosts in a bulk submission, got %+v", msg.sub)
	}
}

func TestRuleDetailCursorHostContext(t *testing.T) {
	m := openDetail(t, store.New(), notify.NewCenter(5))

	_, cmd := m.Update(keyRunes("d"))
	msg := cmd().(openDisableMsg)
	if msg.sub.Host == nil || msg.sub.Host.ID != mockapi.HostWeb1 {
		t.Fatalf("expected host context for the cursor row, got %+v", msg.sub)
	}

	_, cmd = m.Update(keyRunes("D"))
	msg = cmd().(openDisableMsg)
	if msg.sub.Host != nil || len(msg.sub.Hosts) != 0 {
		t.Fatalf("D should disable rule-wide")
	}
}

func TestRuleDetailCopyRuleID(t *testing.T) {
	var copied string
	oldClipboard := clipboardWriteAll
	clipboardWriteAll = func(s string) error { copied = s; return nil }
	defer func() { clipboardWriteAll = oldClipboard }()

	center := notify.NewCenter(5)
	m := openDetail(t, store.New(), center)
	m, _ = m.Update(keyRunes("y"))

	if copied != bondRule {
		t.Fatalf("unexpected clipboard content %q", copied)
	}
	if active := center.Active(); len(active) != 1 || active[0].Title != "Rule ID copied" {
		t.Fatalf("expected copy toast, got %+v", active)
	}
}

func TestRuleDetailStoreRemovalUpdatesRows(t *testing.T) {
	st := store.New()
	m := openDetail(t, st, notify.NewCenter(5))

	st.Dispatch(store.RemoveSystems{HostIDs: []string{mockapi.HostWeb1}})
	m, _ = m.Update(storeChangedMsg{})

	if strings.Contains(m.View(), "web-01.example.com") {
		t.Fatalf("removed system still listed")
	}
}

func TestRuleDetailEscCloses(t *testing.T) {
	m := openDetail(t, store.New(), notify.NewCenter(5))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(closeRuleMsg); !ok {
		t.Fatalf("expected closeRuleMsg")
	}
}
