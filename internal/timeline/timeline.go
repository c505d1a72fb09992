// Package timeline maps wall-clock time onto a position within a looping
// slide schedule. It owns no mutable state after construction: Schedule is
// built once from a parsed slide list and queried repeatedly via Current.
package timeline

import (
	"math"
	"time"

	"github.com/intuitionamiga/driftwall/internal/errs"
)

// TimeRange is a half-open interval [Start, Start+Length) measured in
// seconds from the schedule's start_time, modulo total duration.
type TimeRange struct {
	Start  float64
	Length float64
}

func (r TimeRange) contains(diff float64) bool {
	return diff >= r.Start && diff < r.Start+r.Length
}

// Slide is one entry in a Schedule: a still image held for a duration, or a
// still image followed by a cross-fade into a second image.
type Slide struct {
	From               string
	To                 string // empty for a still-only slide
	DurationStatic     float64
	DurationTransition float64 // zero for a still-only slide
	Range              TimeRange
}

// Animated reports whether this slide transitions into a second image.
func (s Slide) Animated() bool {
	return s.To != ""
}

// AnimationState is the derived, not stored, result of querying a Schedule
// at a point in time.
type AnimationState struct {
	Transitioning bool
	Progress      float64
	Slide         Slide
}

// Still builds a non-transitioning AnimationState.
func Still(progress float64, slide Slide) AnimationState {
	return AnimationState{Transitioning: false, Progress: progress, Slide: slide}
}

// Transition builds a transitioning AnimationState.
func Transition(progress float64, slide Slide) AnimationState {
	return AnimationState{Transitioning: true, Progress: progress, Slide: slide}
}

// Schedule is an anchor timestamp plus an ordered, gap-free, non-overlapping
// tiling of slides across [0, TotalDurationSec). It is immutable after
// construction.
type Schedule struct {
	StartTime       time.Time
	Slides          []Slide
	TotalDurationSec float64
}

// New validates and wraps a caller-built slide list. Callers that parse a
// schedule file are responsible for producing slides in order with
// contiguous, non-overlapping time ranges; New only verifies that
// invariant rather than re-deriving it, since the two schedule sources
// (XML file, single-image shortcut) build ranges differently.
func New(startTime time.Time, slides []Slide, totalDurationSec float64) (*Schedule, error) {
	if len(slides) == 0 {
		return nil, errs.Schedule(errs.CouldNotParse, "timeline.New", "schedule has no slides", nil)
	}
	want := 0.0
	for i, s := range slides {
		if s.Range.Start != want {
			return nil, errs.Schedule(errs.CouldNotParse, "timeline.New",
				"slide time ranges do not tile contiguously", nil)
		}
		if s.Animated() && s.Range.Length != s.DurationStatic+s.DurationTransition {
			return nil, errs.Schedule(errs.CouldNotParse, "timeline.New",
				"animated slide range length does not match duration_static+duration_transition", nil)
		}
		want += s.Range.Length
		slides[i] = s
	}
	if !math.IsInf(totalDurationSec, 1) && math.Abs(want-totalDurationSec) > 1e-6 {
		return nil, errs.Schedule(errs.CouldNotParse, "timeline.New",
			"total_duration_sec does not match sum of slide ranges", nil)
	}
	return &Schedule{StartTime: startTime, Slides: slides, TotalDurationSec: totalDurationSec}, nil
}

// NewStatic builds the static-only shortcut described for single-image
// configuration: one still slide of effectively infinite duration anchored
// to now.
func NewStatic(now time.Time, path string) *Schedule {
	slide := Slide{
		From:           path,
		DurationStatic: math.Inf(1),
		Range:          TimeRange{Start: 0, Length: math.Inf(1)},
	}
	return &Schedule{
		StartTime:        now,
		Slides:           []Slide{slide},
		TotalDurationSec: math.Inf(1),
	}
}

// Current computes the AnimationState at wall-clock time now.
func (s *Schedule) Current(now time.Time) (AnimationState, error) {
	elapsed := now.Sub(s.StartTime).Seconds()

	var diff float64
	if math.IsInf(s.TotalDurationSec, 1) {
		diff = elapsed
	} else {
		diff = math.Mod(elapsed, s.TotalDurationSec)
		if diff < 0 {
			diff += s.TotalDurationSec
		}
	}

	for _, slide := range s.Slides {
		if !slide.Range.contains(diff) {
			continue
		}
		local := diff - slide.Range.Start
		if local < slide.DurationStatic {
			return Still(local, slide), nil
		}
		return Transition(local-slide.DurationStatic, slide), nil
	}

	return AnimationState{}, errs.Schedule(errs.CurrentFrame, "timeline.Schedule.Current",
		"no slide contains the current offset", nil)
}
