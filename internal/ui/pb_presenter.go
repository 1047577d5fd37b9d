package ui

import (
	"io"

	"github.com/cheggaaa/pb/v3"

	"nuiprogress/internal/progress"
	"nuiprogress/internal/ui/textutil"
)

const pbTemplate = `{{string . "label"}} {{bar . "[" "▰" "▰" "▱" "]"}} {{percent . "%3.0f%%"}}`

const pbWidth = 72

// PBPresenter draws each run as a cheggaaa/pb bar. It is the headless
// counterpart of Model and must be driven from the loop goroutine.
type PBPresenter struct {
	progress.NoopObserver
	out   io.Writer
	theme Theme
	bar   *pb.ProgressBar
	runID string
}

var _ progress.Observer = (*PBPresenter)(nil)

// NewPBPresenter creates a presenter writing to out.
func NewPBPresenter(out io.Writer, theme Theme) *PBPresenter {
	return &PBPresenter{out: out, theme: theme}
}

// SetTheme applies theme from the next run on.
func (p *PBPresenter) SetTheme(theme Theme) {
	p.theme = theme
}

// OnStart opens a bar for run.
func (p *PBPresenter) OnStart(run progress.Run) {
	p.finish()

	bar := pb.New(100)
	bar.SetWriter(p.out)
	bar.SetWidth(pbWidth)
	bar.Set(pb.Static, true)
	bar.Set(pb.ReturnSymbol, "\r")
	bar.SetTemplateString(pbTemplate)
	bar.Set("label", textutil.Truncate(run.Label, p.theme.LabelWidth))
	bar.Start()

	p.bar = bar
	p.runID = run.ID
	p.bar.Write()
}

// OnTick moves the bar to the run's percentage.
func (p *PBPresenter) OnTick(run progress.Run) {
	if p.bar == nil || run.ID != p.runID {
		return
	}
	p.bar.SetCurrent(int64(progress.Percent(run.Fraction)))
	p.bar.Write()
}

// OnOverride closes the bar of the replaced run.
func (p *PBPresenter) OnOverride(progress.Run) {
	p.finish()
}

// OnHide closes the bar once the run is hidden.
func (p *PBPresenter) OnHide(run progress.Run, outcome progress.Outcome) {
	if p.bar == nil || run.ID != p.runID {
		return
	}
	if outcome == progress.OutcomeCancelled {
		p.bar.Set("label", textutil.Truncate(run.Label, p.theme.LabelWidth)+" (cancelled)")
	}
	p.finish()
}

// Active reports whether a bar is open.
func (p *PBPresenter) Active() bool {
	return p.bar != nil
}

func (p *PBPresenter) finish() {
	if p.bar == nil {
		return
	}
	p.bar.Finish()
	p.bar.Write()
	p.bar = nil
	p.runID = ""
}
