package ui

import (
	"advisor/internal/ack"
	"advisor/internal/tags"
	"advisor/internal/types"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages delivered to the page models.
type (
	tagsChangedMsg      struct{ snap tags.Snapshot }
	tagsMountedMsg      struct{ err error }
	filtersChangedMsg   struct{}
	selectionChangedMsg struct{}
	storeChangedMsg     struct{}
	toastMsg            struct{}
	expireToastsMsg     struct{}

	rulesLoadedMsg struct {
		rules []types.Rule
		err   error
	}
	systemsLoadedMsg struct {
		systems []types.System
		err     error
	}
	ruleDetailLoadedMsg struct {
		rule    types.Rule
		hostIDs []string
		err     error
	}
	ackResultMsg struct {
		result ack.Result
	}
	ackCompletedMsg struct{}

	openManageTagsMsg  struct{}
	closeManageTagsMsg struct{}
	openRuleMsg        struct{ ruleID string }
	closeRuleMsg       struct{}
	openDisableMsg     struct{ sub ack.Submission }
	closeModalMsg      struct{}
)

// eventBus carries notifications from collaborator goroutines (debounce
// timers, subscriptions) into the bubbletea loop.
type eventBus struct {
	ch chan tea.Msg
}

func newEventBus() *eventBus {
	return &eventBus{ch: make(chan tea.Msg, 64)}
}

// send never blocks; the messages are change signals and the receiving
// page rereads current state, so a dropped duplicate loses nothing.
func (b *eventBus) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	default:
	}
}

func (b *eventBus) wait() tea.Cmd {
	return func() tea.Msg {
		return <-b.ch
	}
}
