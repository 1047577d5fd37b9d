package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"nuiprogress/internal/config"
	"nuiprogress/internal/progress"
)

func TestRenderFrame_TicksAndPercent(t *testing.T) {
	frame := progress.FrameOf(progress.Run{Label: "Loading", Duration: time.Second, Fraction: 0.45, Visible: true}, 20)

	out := RenderFrame(frame, DefaultTheme())

	require.Equal(t, 9, strings.Count(out, FilledTick))
	require.Equal(t, 11, strings.Count(out, EmptyTick))
	require.Contains(t, out, "Loading")
	require.Contains(t, out, "45%")
}

func TestRenderFrame_IsPure(t *testing.T) {
	frame := progress.FrameOf(progress.Run{Label: "Crafting", Duration: time.Second, Fraction: 0.7, Visible: true}, 20)
	theme := DefaultTheme()

	if diff := cmp.Diff(RenderFrame(frame, theme), RenderFrame(frame, theme)); diff != "" {
		t.Errorf("RenderFrame not deterministic (-first +second):\n%s", diff)
	}
}

func TestRenderFrame_EllipsisesLongLabels(t *testing.T) {
	theme := DefaultTheme()
	theme.LabelWidth = 10
	frame := progress.FrameOf(progress.Run{Label: "Repairing the engine block", Duration: time.Second, Visible: true}, 20)

	out := RenderFrame(frame, theme)
	header := strings.Split(out, "\n")[0]

	require.Contains(t, header, "Repairing…")
	require.NotContains(t, out, "engine")
	require.Contains(t, header, "0%")
}

func TestRenderFrame_FullAndEmpty(t *testing.T) {
	full := RenderFrame(progress.FrameOf(progress.Run{Duration: time.Second, Fraction: 1, Visible: true}, 20), DefaultTheme())
	require.Equal(t, 20, strings.Count(full, FilledTick))
	require.Contains(t, full, "100%")

	empty := RenderFrame(progress.FrameOf(progress.Run{}, 20), DefaultTheme())
	require.Zero(t, strings.Count(empty, FilledTick))
	require.Equal(t, 20, strings.Count(empty, EmptyTick))
}

func TestRenderFrame_HeaderAlignsWithBox(t *testing.T) {
	theme := DefaultTheme()
	theme.LabelWidth = 5
	out := RenderFrame(progress.FrameOf(progress.Run{Label: "Go", Duration: time.Second, Fraction: 0.5, Visible: true}, 20), theme)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		require.Equal(t, 24, lipgloss.Width(line), "line %q", line)
	}
}

func TestFade(t *testing.T) {
	base := "abcd"
	require.Equal(t, base, fade(base, 1, 1))
	require.Equal(t, 4+2, lipgloss.Width(fade(base, 0.2, 0)))
}

func TestThemeFromConfig(t *testing.T) {
	got := ThemeFromConfig(config.ThemeConfig{FillColor: "#FF0000", LabelWidth: 12})

	want := DefaultTheme()
	want.FillColor = "#FF0000"
	want.LabelWidth = 12
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ThemeFromConfig mismatch (-want +got):\n%s", diff)
	}
}
