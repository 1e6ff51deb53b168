package ui

import (
	"strings"
	"time"

	"advisor/internal/notify"

	tea "github.com/charmbracelet/bubbletea"
)

// ToastTTL is how long self-expiring toasts stay visible.
const ToastTTL = 6 * time.Second

// ToastsModel renders the active notifications of a Center.
type ToastsModel struct {
	center *notify.Center
	styles Styles
	width  int
}

// NewToastsModel creates the toast area.
func NewToastsModel(center *notify.Center, styles Styles) ToastsModel {
	return ToastsModel{center: center, styles: styles}
}

// SetWidth updates the width.
func (m *ToastsModel) SetWidth(w int) {
	m.width = w
}

// scheduleExpiry ticks once the TTL has passed.
func scheduleExpiry() tea.Cmd {
	return tea.Tick(ToastTTL+100*time.Millisecond, func(time.Time) tea.Msg { return expireToastsMsg{} })
}

// Update handles messages.
func (m ToastsModel) Update(msg tea.Msg) (ToastsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case toastMsg:
		return m, scheduleExpiry()
	case expireToastsMsg:
		m.center.Expire(ToastTTL)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "X" {
			if active := m.center.Active(); len(active) > 0 {
				m.center.Dismiss(active[len(active)-1].ID)
			}
		}
	}
	return m, nil
}

// Empty reports whether nothing is shown.
func (m ToastsModel) Empty() bool {
	return len(m.center.Active()) == 0
}

// View renders the newest toasts, one line each.
func (m ToastsModel) View() string {
	active := m.center.Active()
	if len(active) == 0 {
		return ""
	}
	if len(active) > ToastAreaLines {
		active = active[len(active)-ToastAreaLines:]
	}
	lines := make([]string, 0, len(active))
	for _, n := range active {
		text := n.Title
		if n.Description != "" {
			text += ": " + n.Description
		}
		style := m.styles.Info
		switch n.Variant {
		case notify.VariantSuccess:
			style = m.styles.Success
		case notify.VariantDanger:
			style = m.styles.Error
		case notify.VariantWarning:
			style = m.styles.Warning
		}
		lines = append(lines, m.styles.Toast.Render(style.Render(text)))
	}
	return strings.Join(lines, "\n")
}
