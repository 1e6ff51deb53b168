package ui

// Layout constants for consistent spacing and dimensions
const (
	HeaderHeight   = 2
	ToolbarHeight  = 3
	FooterHeight   = 2
	ToastAreaLines = 3

	MinimumTerminalWidth  = 80
	MinimumTerminalHeight = 24
	CompactModeWidth      = 100

	ModalWidth = 64
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	IsCompact      bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int) LayoutConfig {
	if width < MinimumTerminalWidth {
		width = MinimumTerminalWidth
	}
	if height < MinimumTerminalHeight {
		height = MinimumTerminalHeight
	}
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		IsCompact:      width < CompactModeWidth,
	}
}

// PageWidth is the width available to a page body.
func (l LayoutConfig) PageWidth() int {
	return l.TerminalWidth - 4
}

// PageHeight is the height left for a page body below the header, tag
// toolbar and footer.
func (l LayoutConfig) PageHeight() int {
	h := l.TerminalHeight - HeaderHeight - ToolbarHeight - FooterHeight - ToastAreaLines
	if h < 5 {
		return 5
	}
	return h
}
