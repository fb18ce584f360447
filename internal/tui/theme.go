package tui

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette, true-color hex values
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
	colorBase     lipgloss.Color = "#1e1e2e"
)

// ---------------------------------------------------------------------------
// Semantic color aliases
// ---------------------------------------------------------------------------

const (
	colorAccent  = colorLavender
	colorBrand   = colorMauve
	colorFocus   = colorPink
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

// paletteColors returns every color the form renders with.
func paletteColors() []lipgloss.Color {
	return []lipgloss.Color{
		colorPink, colorMauve, colorRed, colorYellow, colorGreen, colorTeal,
		colorLavender, colorText, colorSubtext0, colorOverlay0, colorSurface1,
		colorBase,
	}
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	labelStyle     = lipgloss.NewStyle().Foreground(colorSubtext0)
	valueStyle     = lipgloss.NewStyle().Foreground(colorText)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorOverlay0)
	focusStyle     = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	invalidStyle   = lipgloss.NewStyle().Foreground(colorError)
	noticeStyle    = lipgloss.NewStyle().Foreground(colorWarning)
	operatorStyle  = lipgloss.NewStyle().Foreground(colorInfo).Bold(true)
	buttonStyle    = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface1).Padding(0, 1)
	buttonFocus    = lipgloss.NewStyle().Foreground(colorBase).Background(colorAccent).Bold(true).Padding(0, 1)
	rowStyle       = lipgloss.NewStyle().PaddingLeft(1).BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(colorSurface1)
	rowInvalid     = rowStyle.BorderStyle(lipgloss.ThickBorder()).BorderForeground(colorError)
	errorBoxStyle  = lipgloss.NewStyle().Foreground(colorError).Border(lipgloss.RoundedBorder()).BorderForeground(colorError).Padding(0, 1).MarginBottom(1)
	modalStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(1, 2).Background(colorBase)
	sectionStyle   = lipgloss.NewStyle().MarginTop(1)
	builderIndent  = lipgloss.NewStyle().PaddingLeft(2)
	helpStyle      = lipgloss.NewStyle().Foreground(colorOverlay0).MarginTop(1)
	statusErrStyle = lipgloss.NewStyle().Foreground(colorError).MarginTop(1)
	statusOKStyle  = lipgloss.NewStyle().Foreground(colorSuccess).MarginTop(1)
)
