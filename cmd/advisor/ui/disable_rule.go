package ui

import (
	"context"
	"strings"

	"advisor/internal/ack"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Modal labels.
const (
	disableRuleTitle      = "Disable recommendation"
	disableRuleBody       = "Disabling a recommendation hides it from the affected systems and from the recommendation counts."
	disableSingleSystem   = "Disable only for this system"
	disableForSystems     = "Disable only for selected systems"
	justificationLabel    = "Justification note"
	justificationHint     = "[enter] save  [tab] checkbox  [esc] cancel"
	justificationHintBare = "[enter] save  [esc] cancel"
)

// DisableRuleModel is the disable-rule modal.
type DisableRuleModel struct {
	orch          *ack.Orchestrator
	sub           ack.Submission
	justification textinput.Model
	spinner       spinner.Model
	singleSystem  bool
	checkboxFocus bool
	submitting    bool
	open          bool
	styles        Styles
}

// NewDisableRuleModel creates a closed modal.
func NewDisableRuleModel(orch *ack.Orchestrator, styles Styles) DisableRuleModel {
	ti := textinput.New()
	ti.Placeholder = "Optional"
	ti.CharLimit = 255
	ti.Width = ModalWidth - 8

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return DisableRuleModel{
		orch:          orch,
		justification: ti,
		spinner:       sp,
		styles:        styles,
	}
}

// Open shows the modal for sub. The single-system checkbox starts checked
// whenever it is shown.
func (m DisableRuleModel) Open(sub ack.Submission) (DisableRuleModel, tea.Cmd) {
	m.sub = sub
	m.open = true
	m.submitting = false
	m.checkboxFocus = false
	m.singleSystem = m.showCheckbox()
	m.orch.Reset()
	cmd := m.justification.Focus()
	return m, cmd
}

// IsOpen reports whether the modal is visible.
func (m DisableRuleModel) IsOpen() bool {
	return m.open
}

// Justification returns the current text.
func (m DisableRuleModel) Justification() string {
	return m.justification.Value()
}

func (m DisableRuleModel) showCheckbox() bool {
	return m.sub.Host != nil || len(m.sub.Hosts) > 0
}

func (m DisableRuleModel) close() DisableRuleModel {
	m.open = false
	m.submitting = false
	m.justification.SetValue("")
	m.justification.Blur()
	return m
}

// submit runs the orchestrator off the UI loop.
func (m DisableRuleModel) submit() tea.Cmd {
	sub := m.sub
	sub.SingleSystem = m.singleSystem
	sub.Justification = m.justification.Value()
	orch := m.orch
	return func() tea.Msg {
		return ackResultMsg{result: orch.Submit(context.Background(), sub)}
	}
}

// Update handles messages.
func (m DisableRuleModel) Update(msg tea.Msg) (DisableRuleModel, tea.Cmd) {
	if !m.open {
		return m, nil
	}
	switch msg := msg.(type) {
	case ackResultMsg:
		m.submitting = false
		res := msg.result
		if res.ClearJustification {
			m.justification.SetValue("")
		}
		if res.CloseModal {
			m = m.close()
			return m, func() tea.Msg { return closeModalMsg{} }
		}
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			m = m.close()
			return m, func() tea.Msg { return closeModalMsg{} }
		case "enter":
			m.submitting = true
			return m, tea.Batch(m.submit(), m.spinner.Tick)
		case "tab", "shift+tab":
			if m.showCheckbox() {
				m.checkboxFocus = !m.checkboxFocus
				if m.checkboxFocus {
					m.justification.Blur()
					return m, nil
				}
				cmd := m.justification.Focus()
				return m, cmd
			}
			return m, nil
		case " ":
			if m.checkboxFocus {
				m.singleSystem = !m.singleSystem
				return m, nil
			}
		}
		if m.checkboxFocus {
			return m, nil
		}
		var cmd tea.Cmd
		m.justification, cmd = m.justification.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the modal.
func (m DisableRuleModel) View() string {
	if !m.open {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(disableRuleTitle))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Body.Width(ModalWidth - 6).Render(disableRuleBody))
	sb.WriteString("\n\n")

	if m.showCheckbox() {
		box := "[ ]"
		if m.singleSystem {
			box = "[x]"
		}
		label := disableSingleSystem
		if len(m.sub.Hosts) > 0 {
			label = disableForSystems
		}
		line := box + " " + label
		if m.checkboxFocus {
			line = m.styles.Title.Render(line)
		}
		sb.WriteString(line + "\n\n")
	}

	sb.WriteString(m.styles.Bold.Render(justificationLabel) + "\n")
	sb.WriteString(m.justification.View() + "\n\n")

	if m.submitting {
		sb.WriteString(m.spinner.View() + " Saving...")
	} else if m.showCheckbox() {
		sb.WriteString(m.styles.Muted.Render(justificationHint))
	} else {
		sb.WriteString(m.styles.Muted.Render(justificationHintBare))
	}
	return m.styles.Modal.Width(ModalWidth).Render(sb.String())
}
