// Package locale formats the date and time lines of an event block in the
// language selected by a BCP 47 tag.
package locale

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

type names struct {
	weekdays [7]string // indexed by time.Weekday
	months   [12]string
}

var (
	german = names{
		weekdays: [7]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
		months: [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni",
			"Juli", "August", "September", "Oktober", "November", "Dezember"},
	}
	english = names{
		weekdays: [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		months: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
			"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	}
	korean = names{
		weekdays: [7]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"},
	}
)

// The first entry is the fallback for unmatched tags.
var supported = []language.Tag{language.German, language.English, language.Korean}

var matcher = language.NewMatcher(supported)

// Formatter renders weekday, date and time ranges for one language.
type Formatter struct {
	tag   language.Tag
	names *names
}

// New returns a Formatter for the closest supported language. Malformed
// or unsupported tags fall back to German. Korean output needs a font with
// Hangul glyphs; the built-in Go fonts have none.
func New(tag string) *Formatter {
	var t language.Tag
	if parsed, err := language.Parse(tag); err == nil {
		t = parsed
	}
	_, idx, _ := matcher.Match(t)

	f := &Formatter{tag: supported[idx]}
	switch supported[idx] {
	case language.English:
		f.names = &english
	case language.Korean:
		f.names = &korean
	default:
		f.names = &german
	}
	return f
}

// Tag reports the language actually used.
func (f *Formatter) Tag() language.Tag {
	return f.tag
}

// Weekday returns the localized name of the day of t.
func (f *Formatter) Weekday(t time.Time) string {
	return f.names.weekdays[t.Weekday()]
}

// Date returns the weekday + date line, e.g. "Sonntag, 15.01.2023".
func (f *Formatter) Date(t time.Time) string {
	switch f.tag {
	case language.English:
		return fmt.Sprintf("%s, %s %d, %d", f.Weekday(t), f.names.months[t.Month()-1], t.Day(), t.Year())
	case language.Korean:
		return fmt.Sprintf("%d. %d. %d. (%s)", t.Year(), int(t.Month()), t.Day(), f.Weekday(t))
	default:
		return fmt.Sprintf("%s, %s", f.Weekday(t), t.Format("02.01.2006"))
	}
}

// TimeRange returns the "start - end" line. A zero or equal end shows only
// the start time.
func (f *Formatter) TimeRange(start, end time.Time) string {
	s := start.Format("15:04")
	if !end.IsZero() && !end.Equal(start) {
		s += " - " + end.Format("15:04")
	}
	if f.tag == language.German {
		s += " Uhr"
	}
	return s
}
