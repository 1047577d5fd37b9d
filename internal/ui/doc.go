// Package ui renders the progress overlay.
//
// Core pieces:
//   - Theme: colours and sizes, reloadable at runtime
//   - RenderFrame: pure rendering of a progress.Frame with lipgloss
//   - Overlay: one mount of the indicator (state machine + scale/fade transition)
//   - Model: the Bubble Tea program hosting an Overlay; loop callbacks arrive as messages
//   - PBPresenter: a cheggaaa/pb rendition of the same frames for non-interactive terminals
package ui
