package errs

import (
	"errors"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	base := errors.New("disk exploded")
	e := Schedule(CouldNotParse, "schedule.Parse", "malformed slide entry", base)

	if e.Family != FamilySchedule {
		t.Fatalf("expected FamilySchedule, got %v", e.Family)
	}
	if e.Kind != CouldNotParse {
		t.Fatalf("expected CouldNotParse, got %v", e.Kind)
	}
	if got := e.Error(); got == "" {
		t.Fatal("expected non-empty error string")
	}
	if !errors.Is(e, base) {
		t.Fatal("expected wrapped cause to be discoverable via errors.Is")
	}
}

func TestIsMatchesFamilyAndKind(t *testing.T) {
	a := Image(CouldNotDecode, "imaging.Load", "bad header", nil)
	b := Image(CouldNotDecode, "imaging.Scale", "different op", nil)
	if !errors.Is(a, b) {
		t.Fatal("expected Is to match on Family+Kind regardless of Op/Detail")
	}

	c := System(GpuSetup, "render.New", "no context", nil)
	if errors.Is(a, c) {
		t.Fatal("did not expect cross-family match")
	}
}

func TestMarginalClassification(t *testing.T) {
	cases := []struct {
		err      error
		marginal bool
	}{
		{System(InvalidDataType, "schedule.InferMode", "unknown extension", nil), true},
		{System(NotAFile, "schedule.InferMode", "no such file", nil), true},
		{System(DisplayConnection, "wl.Connect", "no compositor", nil), false},
		{errors.New("plain error"), false},
	}
	for _, c := range cases {
		if got := Marginal(c.err); got != c.marginal {
			t.Errorf("Marginal(%v) = %v, want %v", c.err, got, c.marginal)
		}
	}
}

func TestSystemAtLocation(t *testing.T) {
	e := SystemAt(GpuOperation, "render.Output.Draw", "glTexImage2D", "upload failed", nil)
	if e.Location != "glTexImage2D" {
		t.Fatalf("expected location to be set, got %q", e.Location)
	}
	if got := e.Error(); got == "" {
		t.Fatal("expected non-empty error string")
	}
}
