package schedule

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInferMode(t *testing.T) {
	cases := []struct {
		path    string
		want    Mode
		wantErr bool
	}{
		{"schedule.xml", ModeDynamic, false},
		{"SCHEDULE.XML", ModeDynamic, false},
		{"wallpaper.png", ModeStatic, false},
		{"wallpaper.JPG", ModeStatic, false},
		{"wallpaper.webp", ModeStatic, false},
		{"wallpaper.farbfeld", ModeStatic, false},
		{"wallpaper.txt", "", true},
		{"noextension", "", true},
	}
	for _, c := range cases {
		got, err := InferMode(c.path)
		if c.wantErr {
			if err == nil {
				t.Errorf("InferMode(%q): expected error, got none", c.path)
			}
			continue
		}
		if err != nil {
			t.Errorf("InferMode(%q): unexpected error: %v", c.path, err)
			continue
		}
		if got != c.want {
			t.Errorf("InferMode(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

const sampleSchedule = `<?xml version="1.0"?>
<background>
  <starttime>
    <year>2026</year>
    <month>1</month>
    <day>1</day>
    <hour>0</hour>
    <minute>0</minute>
    <second>0</second>
  </starttime>
  <static>
    <duration>10</duration>
    <file>/wallpapers/day.png</file>
  </static>
  <transition>
    <type>fade</type>
    <duration>5</duration>
    <from>/wallpapers/day.png</from>
    <to>/wallpapers/night.png</to>
  </transition>
  <static>
    <duration>10</duration>
    <file>/wallpapers/night.png</file>
  </static>
  <transition>
    <type>fade</type>
    <duration>5</duration>
    <from>/wallpapers/night.png</from>
    <to>/wallpapers/day.png</to>
  </transition>
</background>
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadDynamicSchedule(t *testing.T) {
	path := writeTemp(t, "schedule.xml", sampleSchedule)

	sched, err := Load(path, ModeDynamic)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(sched.Slides) != 4 {
		t.Fatalf("expected 4 slides, got %d", len(sched.Slides))
	}
	if sched.TotalDurationSec != 30 {
		t.Fatalf("expected total duration 30, got %v", sched.TotalDurationSec)
	}
	if sched.Slides[0].Animated() {
		t.Error("first slide should be a still image")
	}
	if !sched.Slides[1].Animated() {
		t.Error("second slide should be a transition")
	}
	if !sched.StartTime.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)) {
		t.Errorf("unexpected start time: %v", sched.StartTime)
	}
}

func TestLoadDynamicMissingStartTime(t *testing.T) {
	path := writeTemp(t, "schedule.xml", `<background><static><duration>1</duration><file>a.png</file></static></background>`)
	if _, err := Load(path, ModeDynamic); err == nil {
		t.Fatal("expected InvalidTimeFormat error for missing start-time block")
	}
}

func TestLoadDynamicMalformedXML(t *testing.T) {
	path := writeTemp(t, "schedule.xml", `not xml at all <<<`)
	if _, err := Load(path, ModeDynamic); err == nil {
		t.Fatal("expected CouldNotParse error for malformed XML")
	}
}

func TestLoadStaticShortcut(t *testing.T) {
	path := writeTemp(t, "wallpaper.png", "not a real png, just presence on disk")

	sched, err := Load(path, ModeStatic)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(sched.Slides) != 1 || sched.Slides[0].Animated() {
		t.Fatal("expected single still slide for static shortcut")
	}
}

func TestLoadStaticMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/wallpaper.png", ModeStatic); err == nil {
		t.Fatal("expected NotAFile error for missing static image")
	}
}
