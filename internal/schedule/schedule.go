// Package schedule parses a wallpaper schedule file into a timeline.Schedule
// and infers the requested mode (static image vs. dynamic XML schedule)
// from a path when the caller didn't pin one down explicitly.
package schedule

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/intuitionamiga/driftwall/internal/errs"
	"github.com/intuitionamiga/driftwall/internal/timeline"
)

// Mode selects between a single static image and a multi-slide XML schedule.
type Mode string

const (
	ModeStatic  Mode = "static"
	ModeDynamic Mode = "dynamic"
)

var staticExt = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|gif|webp|farbfeld|tif|tiff|bmp|ico)$`)

// InferMode decides Static vs Dynamic from a file path's extension, per the
// same extension-switch idiom the teacher uses for its own mode detection.
func InferMode(path string) (Mode, error) {
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return ModeDynamic, nil
	}
	if staticExt.MatchString(path) {
		return ModeStatic, nil
	}
	return "", errs.System(errs.InvalidDataType, "schedule.InferMode",
		"unrecognized file extension: "+filepath.Ext(path), nil)
}

// xmlDocument mirrors the schema described for the schedule file: a root
// <background> with an ordered <starttime> followed by alternating
// <static>/<transition> entries.
type xmlDocument struct {
	XMLName   xml.Name      `xml:"background"`
	StartTime *xmlStartTime `xml:"starttime"`
	Entries   []xmlEntry    `xml:",any"`
}

type xmlStartTime struct {
	Year   int `xml:"year"`
	Month  int `xml:"month"`
	Day    int `xml:"day"`
	Hour   int `xml:"hour"`
	Minute int `xml:"minute"`
	Second int `xml:"second"`
}

// xmlEntry captures either a <static> or <transition> element; encoding/xml
// has no native sum-type support so we decode both shapes into one struct
// and distinguish by XMLName, matching the "alternating tag" grammar.
type xmlEntry struct {
	XMLName  xml.Name
	Duration float64 `xml:"duration"`
	File     string  `xml:"file"`
	From     string  `xml:"from"`
	To       string  `xml:"to"`
}

// Load reads path as a static image or a dynamic XML schedule depending on
// mode, producing a *timeline.Schedule ready for Current() queries.
func Load(path string, mode Mode) (*timeline.Schedule, error) {
	switch mode {
	case ModeStatic:
		return loadStatic(path)
	case ModeDynamic:
		return loadDynamic(path)
	default:
		return nil, errs.System(errs.InvalidDataType, "schedule.Load", "unknown mode "+string(mode), nil)
	}
}

func loadStatic(path string) (*timeline.Schedule, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errs.System(errs.NotAFile, "schedule.Load", path, err)
	}
	return timeline.NewStatic(time.Now(), path), nil
}

func loadDynamic(path string) (*timeline.Schedule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Schedule(errs.CouldNotOpen, "schedule.Load", path, err)
	}

	var doc xmlDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, errs.Schedule(errs.CouldNotParse, "schedule.Load", "malformed XML", err)
	}
	if doc.StartTime == nil {
		return nil, errs.Schedule(errs.InvalidTimeFormat, "schedule.Load",
			"first schedule entry is not a start-time block", nil)
	}

	st := doc.StartTime
	startTime, err := safeDate(st.Year, st.Month, st.Day, st.Hour, st.Minute, st.Second)
	if err != nil {
		return nil, errs.Schedule(errs.InvalidTime, "schedule.Load", "start time out of range", err)
	}

	slides := make([]timeline.Slide, 0, len(doc.Entries))
	cursor := 0.0
	for _, e := range doc.Entries {
		slide, err := parseEntry(e, cursor)
		if err != nil {
			return nil, err
		}
		slides = append(slides, slide)
		cursor += slide.Range.Length
	}
	if len(slides) == 0 {
		return nil, errs.Schedule(errs.CouldNotParse, "schedule.Load", "schedule has no static/transition entries", nil)
	}

	return timeline.New(startTime, slides, cursor)
}

func parseEntry(e xmlEntry, start float64) (timeline.Slide, error) {
	switch e.XMLName.Local {
	case "static":
		if e.File == "" || e.Duration <= 0 {
			return timeline.Slide{}, errs.Schedule(errs.CouldNotParse, "schedule.parseEntry",
				"static entry missing file or duration", nil)
		}
		return timeline.Slide{
			From:           e.File,
			DurationStatic: e.Duration,
			Range:          timeline.TimeRange{Start: start, Length: e.Duration},
		}, nil
	case "transition":
		if e.From == "" || e.To == "" || e.Duration <= 0 {
			return timeline.Slide{}, errs.Schedule(errs.CouldNotParse, "schedule.parseEntry",
				"transition entry missing from/to/duration", nil)
		}
		// The schedule format doesn't split transition duration into a
		// static hold plus a fade; treat the whole duration as transition.
		return timeline.Slide{
			From:               e.From,
			To:                 e.To,
			DurationStatic:     0,
			DurationTransition: e.Duration,
			Range:              timeline.TimeRange{Start: start, Length: e.Duration},
		}, nil
	default:
		return timeline.Slide{}, errs.Schedule(errs.CouldNotParse, "schedule.parseEntry",
			"unexpected element <"+e.XMLName.Local+">", nil)
	}
}

func safeDate(year, month, day, hour, minute, second int) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 || hour < 0 || hour > 23 ||
		minute < 0 || minute > 59 || second < 0 || second > 59 {
		return time.Time{}, errs.Schedule(errs.InvalidTime, "schedule.safeDate", "field out of range", nil)
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local), nil
}
