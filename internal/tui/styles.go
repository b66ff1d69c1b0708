package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/berth-dev/stocklens/internal/dashboard"
	"github.com/berth-dev/stocklens/internal/table"
)

// Color constants for the dashboard palette.
const (
	primaryColor   = "#6366F1" // Indigo
	secondaryColor = "#10B981" // Green
	warningColor   = "#F59E0B" // Amber
	errorColor     = "#EF4444" // Red
	dimColor       = "#6B7280" // Gray
)

// Style variables for consistent TUI rendering.
var (
	// BoxStyle provides a rounded border box with primary color.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(primaryColor)).
			Padding(1, 2)

	// TitleStyle renders titles in primary color with bold.
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	// SectionStyle renders section headings.
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	// SelectedStyle highlights the selected column.
	SelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	// DimStyle renders dim/muted text.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(dimColor))

	// SuccessStyle renders success messages in green.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(secondaryColor))

	// ErrorStyle renders error messages in red.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(errorColor))

	// WarningStyle renders warning messages in amber.
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(warningColor))

	// InfoStyle renders informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor))

	// StatusBarStyle provides styling for the status bar.
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(lipgloss.Color("#9CA3AF")).
			Padding(0, 1)

	// ActiveTabStyle renders the active tab.
	ActiveTabStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(primaryColor)).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 2)

	// InactiveTabStyle renders inactive tabs.
	InactiveTabStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#374151")).
				Foreground(lipgloss.Color("#9CA3AF")).
				Padding(0, 2)
)

// Stock badge styles, keyed by stock level.
var stockBadges = map[table.StockLevel]lipgloss.Style{
	table.StockLow:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color(errorColor)).Padding(0, 1),
	table.StockOK:   lipgloss.NewStyle().Foreground(lipgloss.Color("#111827")).Background(lipgloss.Color(warningColor)).Padding(0, 1),
	table.StockGood: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color(secondaryColor)).Padding(0, 1),
}

// RenderCell renders a formatted table cell with its stock badge.
func RenderCell(cell table.Cell) string {
	if cell.Empty {
		return DimStyle.Render(cell.Text)
	}
	if style, ok := stockBadges[cell.Status]; ok {
		return style.Render(cell.Status.String()) + " " + cell.Text
	}
	return cell.Text
}

// FeedbackStyle returns the style for a feedback level.
func FeedbackStyle(level dashboard.Level) lipgloss.Style {
	switch level {
	case dashboard.LevelError:
		return ErrorStyle
	case dashboard.LevelWarning:
		return WarningStyle
	default:
		return InfoStyle
	}
}
