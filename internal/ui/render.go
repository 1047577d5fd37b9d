package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"nuiprogress/internal/progress"
	"nuiprogress/internal/ui/textutil"
)

// percentWidth fits "100%".
const percentWidth = 4

// boxChrome is the border plus horizontal padding around the tick row.
const boxChrome = 4

// RenderFrame draws the label and percentage above a bordered row of ticks.
// It is pure: the same frame and theme always give the same string.
func RenderFrame(f progress.Frame, t Theme) string {
	st := t.styles()

	var ticks strings.Builder
	for _, filled := range f.Segments {
		if filled {
			ticks.WriteString(st.Filled.Render(FilledTick))
		} else {
			ticks.WriteString(st.Empty.Render(EmptyTick))
		}
	}

	labelWidth := t.LabelWidth
	if labelWidth <= 0 {
		labelWidth = DefaultLabelWidth
	}
	headerWidth := max(len(f.Segments)+boxChrome, labelWidth+1+percentWidth)

	label := textutil.PadRightVisual(textutil.Truncate(f.Label, labelWidth), headerWidth-percentWidth)
	percent := textutil.PadLeftVisual(fmt.Sprintf("%d%%", f.Percent), percentWidth)
	header := st.Label.Render(label) + st.Percent.Render(percent)

	return lipgloss.JoinVertical(lipgloss.Left, header, st.Box.Render(ticks.String()))
}

// fade applies the transition's opacity and scale to a rendered frame. A
// shrinking scale indents the block so it collapses toward its centre.
func fade(rendered string, opacity, scale float64) string {
	style := lipgloss.NewStyle()
	if opacity < 0.5 {
		style = style.Faint(true)
	}
	if scale < 1 {
		indent := int(float64(lipgloss.Width(rendered)) * (1 - scale) / 2)
		style = style.MarginLeft(indent)
	}
	return style.Render(rendered)
}
