package render

import (
	"regexp"
	"slices"
	"strconv"
)

// TemperatureParts splits a temperature into its text, degree glyph and unit, so each can be drawn at its own scale.
type TemperatureParts struct {
	Number string
	Degree string
	Unit   string
}

// Frame describes what the panel should show. Either the normal fields or Messages are populated, never both.
type Frame struct {
	Location    string
	Humidity    string
	Temperature TemperatureParts
	Time        string
	Messages    []string
}

// Equal reports whether both frames would draw the same screen.
func (f Frame) Equal(other Frame) bool {
	return f.Location == other.Location &&
		f.Humidity == other.Humidity &&
		f.Temperature == other.Temperature &&
		f.Time == other.Time &&
		slices.Equal(f.Messages, other.Messages)
}

// IsEmpty reports whether nothing has been set.
func (f Frame) IsEmpty() bool {
	return f.Equal(Frame{})
}

func (f Frame) clone() Frame {
	f.Messages = slices.Clone(f.Messages)
	return f
}

// FormatHumidity renders a humidity percentage as "47% humidity".
func FormatHumidity(humidity int) string {
	return strconv.Itoa(humidity) + "% humidity"
}

const (
	DegreeGlyph = "o"
	CelsiusUnit = "C"
)

// FormatTemperature renders a temperature with exactly one fractional digit.
//
// Rounding is round-half-to-even on the exact binary value of t: 21.25 is exactly representable and becomes "21.2",
// while 21.15 is stored as 21.1499999... and becomes "21.1".
func FormatTemperature(t float64) TemperatureParts {
	return TemperatureParts{
		Number: strconv.FormatFloat(t, 'f', 1, 64),
		Degree: DegreeGlyph,
		Unit:   CelsiusUnit,
	}
}

var timeOfDay = regexp.MustCompile(`T(\d\d:\d\d)`)

// FormatTime returns the HH:MM part of an ISO-8601 timestamp, or an empty string if it has none.
func FormatTime(timestamp string) string {
	if m := timeOfDay.FindStringSubmatch(timestamp); m != nil {
		return m[1]
	}
	return ""
}
