package progress

import (
	"errors"
	"math"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Event names exchanged with the host over the bridge.
const (
	EventStart    = "progress"
	EventCancel   = "progressCancel"
	EventComplete = "progressComplete"
)

// StartEvent is the decoded payload of a "progress" event.
type StartEvent struct {
	Label    string
	Duration time.Duration
}

// startPayload mirrors the host's {label, duration} object. Pointers tell a
// missing key apart from a zero value.
type startPayload struct {
	Label    *string  `mapstructure:"label"`
	Duration *float64 `mapstructure:"duration"`
}

var (
	errMissingLabel    = errors.New("progress payload: missing label")
	errMissingDuration = errors.New("progress payload: missing duration")
	errBadDuration     = errors.New("progress payload: duration is not a finite number")
)

// DecodeStart converts a bridge payload into a StartEvent. Numbers may arrive
// as JSON numbers or numeric strings; duration is in milliseconds.
func DecodeStart(payload any) (StartEvent, error) {
	var p startPayload
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return StartEvent{}, err
	}
	if err := dec.Decode(payload); err != nil {
		return StartEvent{}, err
	}
	if p.Label == nil {
		return StartEvent{}, errMissingLabel
	}
	if p.Duration == nil {
		return StartEvent{}, errMissingDuration
	}
	ms := *p.Duration
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return StartEvent{}, errBadDuration
	}
	d := time.Duration(math.MaxInt64)
	if ns := ms * float64(time.Millisecond); ns < math.MaxInt64 {
		d = time.Duration(ns)
	}
	return StartEvent{Label: *p.Label, Duration: d}, nil
}
