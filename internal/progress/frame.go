package progress

import "math"

// DefaultSegments is the number of tick cells in the indicator.
const DefaultSegments = 20

// Percent returns the displayed percentage for fraction f:
// clamp(floor(f*100), 0, 100).
func Percent(f float64) int {
	return clampInt(floorScaled(f, 100), 0, 100)
}

// Filled returns how many of n segments are filled at fraction f. Segment i
// (1-based) is filled iff i <= Filled(f, n).
func Filled(f float64, n int) int {
	if n <= 0 {
		return 0
	}
	return clampInt(floorScaled(f, n), 0, n)
}

// floorScaled returns the largest k with k/n <= f. The product f*n can land
// on either side of an integer through rounding alone (0.29*100 is
// 28.999...), so the candidate is checked against the boundary k/n in
// fraction space, where both sides are correctly rounded.
func floorScaled(f float64, n int) int {
	if math.IsNaN(f) {
		return 0
	}
	scale := float64(n)
	k := math.Floor(f * scale)
	switch {
	case math.IsInf(k, 0) || math.Abs(k) > 1<<53:
	case (k+1)/scale <= f:
		k++
	case k/scale > f:
		k--
	}
	if k > math.MaxInt32 {
		return math.MaxInt32
	}
	if k < math.MinInt32 {
		return math.MinInt32
	}
	return int(k)
}

// Frame is everything the renderer needs to draw one run.
type Frame struct {
	Label    string
	Percent  int
	Segments []bool
	Visible  bool
}

// FrameOf derives a Frame from run with n segments.
func FrameOf(run Run, n int) Frame {
	if n < 0 {
		n = 0
	}
	filled := Filled(run.Fraction, n)
	segments := make([]bool, n)
	for i := range segments {
		segments[i] = i+1 <= filled
	}
	return Frame{
		Label:    run.Label,
		Percent:  Percent(run.Fraction),
		Segments: segments,
		Visible:  run.Visible,
	}
}

// FilledCount returns the number of filled segments in the frame.
func (f Frame) FilledCount() int {
	n := 0
	for _, s := range f.Segments {
		if s {
			n++
		}
	}
	return n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
