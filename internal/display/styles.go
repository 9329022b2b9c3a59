// internal/display/styles.go

package display

import "github.com/charmbracelet/lipgloss"

var (
	// Adaptive colors for dark/light terminals
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorBody    = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorWarn    = lipgloss.AdaptiveColor{Light: "#C77C02", Dark: "#FFB86C"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(colorBody)

	metaStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	scoreStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorWarn)
)
