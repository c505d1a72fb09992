// Package errs implements the three error-kind families driftwall uses to
// report failures: schedule parsing, image decode/upload, and system/GPU
// plumbing. It mirrors the teacher's VideoError shape (Operation/Details/Err)
// generalized to three families with Kind enums, plus errors.Is/As support.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Family distinguishes which of the three taxonomies an error belongs to.
type Family int

const (
	FamilySchedule Family = iota
	FamilyImage
	FamilySystem
)

func (f Family) String() string {
	switch f {
	case FamilySchedule:
		return "schedule"
	case FamilyImage:
		return "image"
	case FamilySystem:
		return "system"
	default:
		return "unknown"
	}
}

// Kind is a family-scoped error code. The zero value is never used directly;
// each family defines its own constants below.
type Kind int

// ScheduleError kinds.
const (
	InvalidTimeFormat Kind = iota + 1
	InvalidTime
	CouldNotOpen
	CouldNotParse
	CurrentFrame
)

// ImageError kinds.
const (
	CouldNotCreateSurface Kind = iota + 100
	CouldNotCreateContext
	CouldNotDecode
	ResourceLimit
	Unsupported
	BufferInvalid
	ImageIO
	ImageGeneric
)

// SystemError kinds.
const (
	DisplayConnection Kind = iota + 200
	ProtocolObject
	GpuSetup
	GpuOperation
	LockPoisoned
	OutputDataNotReady
	NotAFile
	InvalidDataType
)

var kindNames = map[Kind]string{
	InvalidTimeFormat:     "InvalidTimeFormat",
	InvalidTime:           "InvalidTime",
	CouldNotOpen:          "CouldNotOpen",
	CouldNotParse:         "CouldNotParse",
	CurrentFrame:          "CurrentFrame",
	CouldNotCreateSurface: "CouldNotCreateSurface",
	CouldNotCreateContext: "CouldNotCreateContext",
	CouldNotDecode:        "CouldNotDecode",
	ResourceLimit:         "ResourceLimit",
	Unsupported:           "Unsupported",
	BufferInvalid:         "BufferInvalid",
	ImageIO:               "Io",
	ImageGeneric:          "Generic",
	DisplayConnection:     "DisplayConnection",
	ProtocolObject:        "ProtocolObject",
	GpuSetup:              "GpuSetup",
	GpuOperation:          "GpuOperation",
	LockPoisoned:          "LockPoisoned",
	OutputDataNotReady:    "OutputDataNotReady",
	NotAFile:              "NotAFile",
	InvalidDataType:       "InvalidDataType",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is driftwall's single error type across all three families. It plays
// the role the teacher's VideoError plays for video_interface.go, extended
// with a Family/Kind pair and an optional Location (used by SystemError's
// GpuOperation/LockPoisoned kinds, which spec.md carries a location string
// for).
type Error struct {
	Family   Family
	Kind     Kind
	Op       string // operation being attempted, e.g. "render.Output.Draw"
	Location string // optional: e.g. the GPU call site for GpuOperation
	Detail   string
	Err      error
}

func (e *Error) Error() string {
	loc := e.Location
	if loc != "" {
		loc = " (" + loc + ")"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s%s: %s: %v", e.Family, e.Op, loc, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s%s: %s", e.Family, e.Op, loc, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, errs.Schedule(errs.CurrentFrame, "", "", nil)) match on
// Family+Kind alone, ignoring Op/Detail/Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Family == t.Family && e.Kind == t.Kind
}

func newErr(family Family, kind Kind, op, detail string, cause error) *Error {
	var wrapped error
	if cause != nil {
		wrapped = errors.WithStack(cause)
	}
	return &Error{Family: family, Kind: kind, Op: op, Detail: detail, Err: wrapped}
}

// Schedule constructs a ScheduleError.
func Schedule(kind Kind, op, detail string, cause error) *Error {
	return newErr(FamilySchedule, kind, op, detail, cause)
}

// Image constructs an ImageError.
func Image(kind Kind, op, detail string, cause error) *Error {
	return newErr(FamilyImage, kind, op, detail, cause)
}

// System constructs a SystemError.
func System(kind Kind, op, detail string, cause error) *Error {
	return newErr(FamilySystem, kind, op, detail, cause)
}

// SystemAt constructs a SystemError carrying a call-site location, used for
// GpuOperation(location) and LockPoisoned(location) per spec.md §7.
func SystemAt(kind Kind, op, location, detail string, cause error) *Error {
	e := newErr(FamilySystem, kind, op, detail, cause)
	e.Location = location
	return e
}

// Marginal reports whether an error should be printed as a one-line cause
// rather than the full structured report, per spec.md §7: "invalid data
// type, file-not-found print only the one-line cause".
func Marginal(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == InvalidDataType || e.Kind == NotAFile
}
