package headless

import "testing"

func TestNewContextRecordsLast(t *testing.T) {
	f := New(800, 600)
	ctx, err := f.NewContext(800, 600)
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	if f.Last == nil {
		t.Fatal("expected Factory to record the last constructed context")
	}
	if err := ctx.MakeCurrent(); err != nil {
		t.Fatalf("MakeCurrent failed: %v", err)
	}
	if err := ctx.SwapBuffers(); err != nil {
		t.Fatalf("SwapBuffers failed: %v", err)
	}
	if f.Last.SwapCount() != 1 {
		t.Errorf("expected swap count 1, got %d", f.Last.SwapCount())
	}
}

func TestSurfaceAwaitConfigureReturnsConfiguredSize(t *testing.T) {
	f := New(1920, 1080)
	surf, err := f.NewSurface(1)
	if err != nil {
		t.Fatalf("NewSurface failed: %v", err)
	}
	w, h, err := surf.AwaitConfigure()
	if err != nil {
		t.Fatalf("AwaitConfigure failed: %v", err)
	}
	if w != 1920 || h != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", w, h)
	}
}
