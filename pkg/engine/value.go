package engine

import (
	"fmt"
	"time"
)

// Kind discriminates the runtime value union.
type Kind int

// Runtime value kinds.
const (
	KindTime Kind = iota
	KindDuration
	KindNumber
	KindBoolean
	KindText
	KindFailure
)

var kindNames = map[Kind]string{
	KindTime:     "Time",
	KindDuration: "Duration",
	KindNumber:   "Number",
	KindBoolean:  "Boolean",
	KindText:     "Text",
	KindFailure:  "Failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is the result of evaluating an expression. Failure is a value, not
// an error: a computation that cannot produce a time on this day (polar
// night, an angle the sun never reaches) yields a Failure that alternatives
// like first_valid can recover from. Hard faults such as type mismatches are
// returned as Go errors instead.
type Value struct {
	Kind     Kind
	Time     time.Time
	Duration time.Duration
	Number   float64
	Text     string
	Boolean  bool

	// Reason describes the failure when Kind is KindFailure.
	Reason string
}

// IsFailure reports whether the value is a failure.
func (v Value) IsFailure() bool {
	return v.Kind == KindFailure
}

func (v Value) String() string {
	switch v.Kind {
	case KindTime:
		return v.Time.Format("15:04:05")
	case KindDuration:
		return v.Duration.String()
	case KindNumber:
		return fmt.Sprintf("%g", v.Number)
	case KindBoolean:
		return fmt.Sprintf("%t", v.Boolean)
	case KindText:
		return v.Text
	case KindFailure:
		return "failure: " + v.Reason
	}
	return "invalid"
}

// TimeValue wraps a concrete time. A zero time is a failure, since zero is
// how the solver reports that the sun never reached the requested position.
func TimeValue(t time.Time) Value {
	if t.IsZero() {
		return Failuref("time could not be determined")
	}
	return Value{Kind: KindTime, Time: t}
}

// DurationValue wraps a duration.
func DurationValue(d time.Duration) Value {
	return Value{Kind: KindDuration, Duration: d}
}

// NumberValue wraps a number.
func NumberValue(n float64) Value {
	return Value{Kind: KindNumber, Number: n}
}

// TextValue wraps a text value.
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// BoolValue wraps a boolean.
func BoolValue(b bool) Value {
	return Value{Kind: KindBoolean, Boolean: b}
}

// Failuref creates a failure value with a formatted reason.
func Failuref(format string, args ...any) Value {
	return Value{Kind: KindFailure, Reason: fmt.Sprintf(format, args...)}
}
