package ui

import (
	"github.com/charmbracelet/lipgloss"

	"nuiprogress/internal/config"
)

// Default theme colours.
const (
	ColorFill   = "#41118E" // Purple - filled ticks
	ColorEmpty  = "#3A3A3A" // Dark gray - unfilled ticks
	ColorBorder = "#F5F5F5" // Whitesmoke - container border
	ColorText   = "#DEE2E6" // Light gray - label and percent
	ColorMuted  = "241"     // Gray - help line
)

// Tick glyphs.
const (
	FilledTick = "▰"
	EmptyTick  = "▱"
)

// DefaultLabelWidth is the widest label shown before it is ellipsised.
const DefaultLabelWidth = 32

// Theme holds the colours and sizes of the rendered indicator.
type Theme struct {
	FillColor   string
	EmptyColor  string
	BorderColor string
	TextColor   string
	LabelWidth  int
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	return Theme{
		FillColor:   ColorFill,
		EmptyColor:  ColorEmpty,
		BorderColor: ColorBorder,
		TextColor:   ColorText,
		LabelWidth:  DefaultLabelWidth,
	}
}

// ThemeFromConfig overlays the configured values on the default theme.
func ThemeFromConfig(c config.ThemeConfig) Theme {
	t := DefaultTheme()
	if c.FillColor != "" {
		t.FillColor = c.FillColor
	}
	if c.EmptyColor != "" {
		t.EmptyColor = c.EmptyColor
	}
	if c.LabelWidth > 0 {
		t.LabelWidth = c.LabelWidth
	}
	return t
}

type styles struct {
	Label   lipgloss.Style
	Percent lipgloss.Style
	Filled  lipgloss.Style
	Empty   lipgloss.Style
	Box     lipgloss.Style
	Hint    lipgloss.Style
}

func (t Theme) styles() styles {
	return styles{
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.TextColor)),
		Percent: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.TextColor)).
			Align(lipgloss.Right),
		Filled: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FillColor)),
		Empty: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.EmptyColor)),
		Box: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(t.BorderColor)).
			Padding(0, 1),
		Hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorMuted)),
	}
}
