package ui

import (
	"github.com/charmbracelet/lipgloss"

	"weekplan/internal/config"
)

var (
	colorWhite = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim   = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed   = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorBlue  = lipgloss.AdaptiveColor{Light: "25", Dark: "39"}
	colorSteel = lipgloss.AdaptiveColor{Light: "238", Dark: "250"}
)

type styles struct {
	header        lipgloss.Style
	status        lipgloss.Style
	errStatus     lipgloss.Style
	help          lipgloss.Style
	section       lipgloss.Style
	category      lipgloss.Style
	selected      lipgloss.Style
	target        lipgloss.Style
	dragged       lipgloss.Style
	done          lipgloss.Style
	occurrence    lipgloss.Style
	dim           lipgloss.Style
	today         lipgloss.Style
	panel         lipgloss.Style
	panelFocused  lipgloss.Style
	overlay       lipgloss.Style
	overlayHeader lipgloss.Style
}

// newStyles builds the palette for a theme. Blue accents everything in blue;
// dark keeps to greys.
func newStyles(theme string) styles {
	accent := lipgloss.TerminalColor(colorBlue)
	if theme == config.ThemeDark {
		accent = colorSteel
	}
	return styles{
		header:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		status:    lipgloss.NewStyle().Foreground(colorWhite).Background(lipgloss.AdaptiveColor{Light: "254", Dark: "236"}),
		errStatus: lipgloss.NewStyle().Foreground(colorRed).Bold(true),
		help:      lipgloss.NewStyle().Foreground(colorDim),
		section:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		category:  lipgloss.NewStyle().Foreground(colorDim).Italic(true),
		selected:  lipgloss.NewStyle().Background(lipgloss.AdaptiveColor{Light: "254", Dark: "237"}).Bold(true),
		target: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Underline(true),
		dragged:    lipgloss.NewStyle().Foreground(colorDim).Strikethrough(true),
		done:       lipgloss.NewStyle().Foreground(colorGreen).Strikethrough(true),
		occurrence: lipgloss.NewStyle().Foreground(accent),
		dim:        lipgloss.NewStyle().Foreground(colorDim),
		today:      lipgloss.NewStyle().Bold(true).Underline(true),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim),
		panelFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent),
		overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		overlayHeader: lipgloss.NewStyle().Bold(true),
	}
}

// loadStyle colours a day's load figure with its ramp colour.
func loadStyle(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}
