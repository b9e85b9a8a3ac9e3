// package tui provides the terminal user interface for Agekey.
// This file defines the shared lipgloss styles used across the view
// to ensure a consistent look and feel.
package tui // import "github.com/toeirei/agekey/internal/tui"

import "github.com/charmbracelet/lipgloss"

// colorPalette defines the core colors used in the TUI.
const (
	colorSubtle    = lipgloss.Color("240") // Muted gray
	colorHighlight = lipgloss.Color("81")  // A nice teal/cyan
	colorSpecial   = lipgloss.Color("208") // An orange for special attention
	colorError     = lipgloss.Color("196") // A bright red
	colorSuccess   = lipgloss.Color("40")  // A nice green
	colorWhite     = lipgloss.Color("231")
)

// Styles defines the reusable lipgloss styles for various UI components.
var (
	// General
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	// Main title
	titleStyle = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true).
			Padding(0, 1)

	// Section labels above the key panes
	labelStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	// Hints next to the labels
	hintStyle = lipgloss.NewStyle().
			Foreground(colorSubtle).
			Italic(true)

	// Placeholder text inside an empty key pane
	placeholderStyle = lipgloss.NewStyle().Foreground(colorSubtle)

	// Key panes
	keyPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1).
			Width(72)

	// Help text
	helpStyle = lipgloss.NewStyle().Foreground(colorSubtle)

	// Error messages
	errorStyle = lipgloss.NewStyle().Foreground(colorError)

	// Success messages
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)

	// In-progress status messages
	specialStyle = lipgloss.NewStyle().Foreground(colorSpecial)

	// Status line
	statusStyle = lipgloss.NewStyle().Foreground(colorSubtle).Padding(0, 1)

	// Save prompt box
	promptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(colorHighlight).
			Padding(1, 2)
)
