package ui

import (
	"errors"
	"strings"
	"testing"

	"advisor/internal/notify"
)

func TestToastsViewShowsNewest(t *testing.T) {
	center := notify.NewCenter(10)
	m := NewToastsModel(center, DefaultStyles())
	if m.View() != "" || !m.Empty() {
		t.Fatalf("expected empty toast area")
	}

	for i := 0; i < ToastAreaLines+1; i++ {
		notify.Success(center, "Recommendation successfully disabled")
	}
	notify.Failure(center, errors.New("connection refused"))

	view := m.View()
	if got := strings.Count(view, "\n") + 1; got != ToastAreaLines {
		t.Fatalf("expected %d lines, got %d", ToastAreaLines, got)
	}
	if !strings.Contains(view, "Error: connection refused") {
		t.Fatalf("expected failure toast:\n%s", view)
	}
}

func TestToastsDismiss(t *testing.T) {
	center := notify.NewCenter(10)
	m := NewToastsModel(center, DefaultStyles())
	notify.Failure(center, errors.New("boom"))

	m, _ = m.Update(keyRunes("X"))
	if !m.Empty() {
		t.Fatalf("expected toast to be dismissed")
	}
}
