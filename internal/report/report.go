// Package report builds the user-visible failure report described for
// fatal errors: the error kind, every currently known output, and the
// current schedule. It lives apart from internal/errs to avoid a dependency
// cycle, since a report needs to know about the output registry and
// timeline that errs itself must stay independent of, the same separation
// the teacher draws between its error types and its runtimeStatusStore
// snapshot.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/intuitionamiga/driftwall/internal/errs"
	"github.com/intuitionamiga/driftwall/internal/timeline"
	"github.com/intuitionamiga/driftwall/internal/wl"
)

// Report captures everything needed to render a structured failure report.
type Report struct {
	Err      error
	Outputs  []wl.Snapshot
	Schedule *timeline.Schedule
}

// New builds a Report from the current registry and schedule at the moment
// err was raised.
func New(err error, registry *wl.Registry, sched *timeline.Schedule) Report {
	var outputs []wl.Snapshot
	if registry != nil {
		outputs = registry.Snapshot()
	}
	return Report{Err: err, Outputs: outputs, Schedule: sched}
}

// String renders the report. Marginal errors (invalid data type,
// file-not-found) print only their one-line cause; everything else prints
// the full report.
func (r Report) String() string {
	if errs.Marginal(r.Err) {
		return r.Err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "error: %v\n", r.Err)

	var e *errs.Error
	if errors.As(r.Err, &e) {
		fmt.Fprintf(&b, "  family: %s\n  kind:   %s\n", e.Family, e.Kind)
	}

	fmt.Fprintf(&b, "outputs (%d known):\n", len(r.Outputs))
	for _, o := range r.Outputs {
		fmt.Fprintf(&b, "  - id=%d make=%q model=%q mode=%dx%d@%dmHz scale=%d\n",
			o.ID, o.Geometry.Make, o.Geometry.Model, o.Mode.Width, o.Mode.Height, o.Mode.RefreshMHz, o.Scale)
	}

	if r.Schedule != nil {
		fmt.Fprintf(&b, "schedule: start=%s slides=%d total_duration_sec=%v\n",
			r.Schedule.StartTime.Format("2006-01-02T15:04:05"), len(r.Schedule.Slides), r.Schedule.TotalDurationSec)
	} else {
		b.WriteString("schedule: none loaded\n")
	}

	return b.String()
}
