package report

import (
	"strings"
	"testing"
	"time"

	"github.com/intuitionamiga/driftwall/internal/errs"
	"github.com/intuitionamiga/driftwall/internal/timeline"
	"github.com/intuitionamiga/driftwall/internal/wl"
)

func TestMarginalErrorPrintsOneLine(t *testing.T) {
	err := errs.System(errs.NotAFile, "schedule.Load", "/tmp/missing.png", nil)
	r := New(err, nil, nil)
	got := r.String()
	if strings.Contains(got, "outputs (") {
		t.Errorf("expected marginal error to skip full report, got:\n%s", got)
	}
	if got != err.Error() {
		t.Errorf("expected one-line cause, got %q", got)
	}
}

func TestFullReportListsOutputsAndSchedule(t *testing.T) {
	registry := wl.NewRegistry()
	out := wl.NewOutput(1)
	out.SetGeometry(wl.Geometry{Make: "Dell", Model: "U2720Q"})
	out.SetMode(wl.Mode{Width: 3840, Height: 2160, RefreshMHz: 60000})
	out.MarkDone()
	registry.Add(out)

	sched := timeline.NewStatic(time.Now(), "/tmp/a.png")
	err := errs.System(errs.DisplayConnection, "wl.Connect", "compositor gone", nil)

	r := New(err, registry, sched)
	got := r.String()

	if !strings.Contains(got, "Dell") || !strings.Contains(got, "U2720Q") {
		t.Errorf("expected output geometry in report, got:\n%s", got)
	}
	if !strings.Contains(got, "outputs (1 known)") {
		t.Errorf("expected output count, got:\n%s", got)
	}
	if !strings.Contains(got, "schedule:") {
		t.Errorf("expected schedule summary, got:\n%s", got)
	}
}
